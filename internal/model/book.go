package model // import "github.com/Xunop/e-library/internal/model"

// Book is one record of the library document. ID, Filename, Path, FileSize
// and AddedDate never change once the book has been uploaded.
type Book struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Field    string   `json:"field"`
	Tags     []string `json:"tags"`
	FileSize string   `json:"filesize"`
	Type     string   `json:"type"`
	Filename string   `json:"filename"`
	// Path is relative to the repository root, always slash separated.
	Path      string `json:"path"`
	AddedDate string `json:"addedDate"`
}

// Library is the whole metadata document.
type Library struct {
	Books []*Book `json:"books"`

	// Written by the scanner, kept in sync on save when present.
	GeneratedAt string   `json:"generatedAt,omitempty"`
	TotalBooks  int      `json:"totalBooks,omitempty"`
	Fields      []string `json:"fields,omitempty"`
}

func NewLibrary() *Library {
	return &Library{Books: make([]*Book, 0)}
}

// IndexOf returns the position of the book with the given ID, or -1.
func (l *Library) IndexOf(id string) int {
	for i, book := range l.Books {
		if book.ID == id {
			return i
		}
	}
	return -1
}

// Summarize refreshes the scanner summary fields.
func (l *Library) Summarize() {
	l.TotalBooks = len(l.Books)
	seen := make(map[string]bool)
	l.Fields = make([]string, 0)
	for _, book := range l.Books {
		if !seen[book.Field] {
			seen[book.Field] = true
			l.Fields = append(l.Fields, book.Field)
		}
	}
}

// FindBook holds the search filters, a nil or empty filter matches everything.
type FindBook struct {
	// Query is matched case-insensitively against title, author and tags.
	Query *string `json:"q"`
	// Field must be equal to the book field.
	Field *string `json:"field"`
	// Tag must be one of the book tags.
	Tag *string `json:"tag"`
}

type SearchResult struct {
	Books []*Book `json:"books"`
	Count int     `json:"count"`
}

// BookCreate carries the form values of an upload.
type BookCreate struct {
	Title  string
	Author string
	Field  string
	Tags   []string
	Type   string
	// Filename is the name sent by the client, before sanitizing.
	Filename string
}

// BookPatch lists the mutable attributes, nil means unchanged.
type BookPatch struct {
	Title  *string   `json:"title"`
	Author *string   `json:"author"`
	Field  *string   `json:"field"`
	Tags   *[]string `json:"tags"`
	Type   *string   `json:"type"`
}
