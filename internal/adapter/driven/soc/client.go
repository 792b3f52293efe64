// Package soc implements the course metadata and open-section ports against
// the Rutgers Schedule of Classes JSON API.
package soc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/klauspost/compress/gzip"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CourseSource      = (*Client)(nil)
	_ driven.OpenSectionSource = (*Client)(nil)
)

// ErrUnexpectedStatus is wrapped when SOC answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

const (
	coursesPath      = "/courses.gz"
	openSectionsPath = "/openSections.gz"
	userAgent        = "snipecord/1"
)

// Client talks to the SOC API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a SOC client with an in-memory httpcache transport.
// Open-section polls are revalidated on every request so a cached body is
// only reused when the server confirms it with 304 Not Modified.
func NewClient(baseURL string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	return &Client{
		http:    cacheTransport.Client(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type courseJSON struct {
	Title    string        `json:"title"`
	Sections []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Number string `json:"number"`
	Index  string `json:"index"`
}

// FetchCourses downloads the full course catalog for q. The response is
// large and fetched once, so it is never stored in the HTTP cache.
func (c *Client) FetchCourses(ctx context.Context, q model.Query) ([]model.Course, error) {
	var raw []courseJSON
	if err := c.getJSON(ctx, coursesPath, q, "no-store", &raw); err != nil {
		return nil, err
	}

	courses := make([]model.Course, 0, len(raw))
	for _, rc := range raw {
		courses = append(courses, mapCourse(rc))
	}
	return courses, nil
}

// FetchOpenSections returns the indexes of every open section for q.
func (c *Client) FetchOpenSections(ctx context.Context, q model.Query) ([]string, error) {
	var open []string
	if err := c.getJSON(ctx, openSectionsPath, q, "max-age=0", &open); err != nil {
		return nil, err
	}
	if open == nil {
		open = []string{}
	}
	return open, nil
}

func mapCourse(rc courseJSON) model.Course {
	sections := make([]model.Section, 0, len(rc.Sections))
	for _, s := range rc.Sections {
		sections = append(sections, model.Section{Number: s.Number, Index: s.Index})
	}
	return model.Course{
		Title:    strings.TrimSpace(rc.Title),
		Sections: sections,
	}
}

// getJSON issues a GET for path with the query parameters of q and decodes
// the (possibly gzip-compressed) JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, q model.Query, cacheControl string, v any) error {
	endpoint := c.endpoint(path, q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", cacheControl)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request %s: %w: %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := decompress(resp.Body)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", path, err)
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	// The cache transport only stores a body once it has been read to EOF.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) endpoint(path string, q model.Query) string {
	params := url.Values{}
	params.Set("year", q.Year)
	params.Set("term", q.Term)
	params.Set("campus", q.Campus)
	params.Set("level", q.Level)
	return c.baseURL + path + "?" + params.Encode()
}

// decompress sniffs the gzip magic bytes and wraps r in a gzip reader when
// present. The .gz endpoints are served both with and without a
// Content-Encoding header, and net/http only decodes the former.
func decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return zr, nil
	}
	return io.NopCloser(br), nil
}
