package model

const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Job is one file handed to a worker by the scanner.
type Job struct {
	// ID is the position of the file in the scan, it drives the book ID.
	ID       int
	Field    string
	FieldDir string
	Filename string
	// Path is the absolute path of the file.
	Path   string
	Status string
}

type JobResult struct {
	Job  Job
	Book *Book
	Err  error
}
