package model

// Course is the subset of SOC course metadata used to build display labels.
type Course struct {
	Title    string
	Sections []Section
}

// Section is a single registrable section of a course.
type Section struct {
	Number string
	Index  string // Five-digit registration index; the watched identifier.
}
