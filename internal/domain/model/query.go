package model

// Query identifies the semester and catalog both SOC endpoints are asked about.
type Query struct {
	Year   string
	Term   string // "0" winter, "1" spring, "7" summer, "9" fall.
	Campus string // "NB", "NK" or "CM".
	Level  string // "U" undergraduate, "G" graduate.
}

// Semester returns the term-then-year code WebReg expects in semesterSelection.
func (q Query) Semester() string {
	return q.Term + q.Year
}
