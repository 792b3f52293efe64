package application_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// --- Mock implementations ---

type mockOpenSource struct {
	fetch func(ctx context.Context, q model.Query) ([]string, error)
}

func (m *mockOpenSource) FetchOpenSections(ctx context.Context, q model.Query) ([]string, error) {
	return m.fetch(ctx, q)
}

// scriptedSource returns one snapshot per call, repeating the last one
// once the script runs out. A nil entry with a matching err entry returns
// that error.
type scriptedSource struct {
	mu    sync.Mutex
	snaps [][]string
	errs  []error
	calls int
}

func (s *scriptedSource) FetchOpenSections(_ context.Context, _ model.Query) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.snaps) {
		i = len(s.snaps) - 1
	}
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.snaps[i], nil
}

type mockCourseSource struct {
	courses []model.Course
	err     error
}

func (m *mockCourseSource) FetchCourses(_ context.Context, _ model.Query) ([]model.Course, error) {
	return m.courses, m.err
}

type recordingNotifier struct {
	mu   sync.Mutex
	name string
	err  error
	sent []model.Message
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Notify(_ context.Context, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) messages() []model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Message(nil), n.sent...)
}

type mockStore struct {
	mu      sync.Mutex
	records []model.NotificationRecord
	err     error
}

func (m *mockStore) Record(_ context.Context, rec model.NotificationRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

func (m *mockStore) ListRecent(_ context.Context, _ int) ([]model.NotificationRecord, error) {
	return nil, nil
}

func (m *mockStore) ListByIndex(_ context.Context, _ string, _ int) ([]model.NotificationRecord, error) {
	return nil, nil
}

type publishCall struct {
	Topic string
	Event any
}

type mockPublisher struct {
	calls []publishCall
	err   error
}

func (m *mockPublisher) Publish(_ context.Context, topic string, event any) error {
	m.calls = append(m.calls, publishCall{Topic: topic, Event: event})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

var errBoom = errors.New("boom")

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a logger writing text records at debug level to the
// returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
