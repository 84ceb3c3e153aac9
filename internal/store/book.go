package store

import (
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
	"github.com/Xunop/e-library/internal/validator"
)

const dateLayout = "2006-01-02"

// load reads the document and falls back to an empty library when it can't
// be read. The caller must hold s.mu.
func (s *Store) load() (*model.Library, error) {
	library, err := s.metadata.Load()
	if err != nil {
		log.Warn("Falling back to an empty library", zap.Error(err))
	}
	return library, err
}

// GetLibrary returns the whole document.
func (s *Store) GetLibrary() *model.Library {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, _ := s.load()
	return library
}

func (s *Store) ListBooks() []*model.Book {
	return s.GetLibrary().Books
}

func (s *Store) GetBook(id string) (*model.Book, error) {
	if id == "" {
		return nil, errors.WithMessage(model.ErrInvalidInput, "book id is empty")
	}

	library := s.GetLibrary()
	i := library.IndexOf(id)
	if i < 0 {
		return nil, errors.WithMessagef(model.ErrNotFound, "id %q", id)
	}
	return library.Books[i], nil
}

// ListFields returns every field in use, sorted and without duplicates.
func (s *Store) ListFields() []string {
	fields := make([]string, 0)
	seen := make(map[string]bool)
	for _, book := range s.ListBooks() {
		if !seen[book.Field] {
			seen[book.Field] = true
			fields = append(fields, book.Field)
		}
	}
	sort.Strings(fields)
	return fields
}

// SearchBooks keeps the books matching every filter of find, in library order.
func (s *Store) SearchBooks(find *model.FindBook) *model.SearchResult {
	books := make([]*model.Book, 0)
	for _, book := range s.ListBooks() {
		if find == nil || matchBook(book, find) {
			books = append(books, book)
		}
	}
	return &model.SearchResult{Books: books, Count: len(books)}
}

func matchBook(book *model.Book, find *model.FindBook) bool {
	if v := find.Query; v != nil && *v != "" {
		query := strings.ToLower(*v)
		contains := func(s string) bool {
			return strings.Contains(strings.ToLower(s), query)
		}
		if !contains(book.Title) && !contains(book.Author) && !slices.ContainsFunc(book.Tags, contains) {
			return false
		}
	}
	if v := find.Field; v != nil && *v != "" && book.Field != *v {
		return false
	}
	if v := find.Tag; v != nil && *v != "" && !slices.Contains(book.Tags, *v) {
		return false
	}
	return true
}

// CreateBook stores content under the book field and appends the new record.
// When the record can't be saved the stored file is removed again.
func (s *Store) CreateBook(create *model.BookCreate, content io.Reader) (*model.Book, error) {
	if err := validator.ValidateBookCreate(s.opts, create); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.WithMessage(model.ErrInvalidInput, "no file provided")
	}

	filename := util.SecureFilename(create.Filename)
	if !s.opts.IsSupportedType(util.FileExt(filename)) {
		return nil, errors.WithMessagef(model.ErrInvalidInput, "file name %q has no usable characters", create.Filename)
	}
	field := strings.TrimSpace(create.Field)
	if field == "" {
		field = s.opts.DefaultField
	}
	bookType := strings.TrimSpace(create.Type)
	if bookType == "" {
		bookType = s.opts.DefaultType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	relPath, err := s.files.Store(field, filename, content)
	if err != nil {
		return nil, err
	}
	filesize, err := s.files.SizeOf(relPath)
	if err != nil {
		return nil, s.discardFile(relPath, err)
	}

	library, err := s.load()
	if err != nil {
		// Saving over an unreadable document would drop every record in it.
		return nil, s.discardFile(relPath, err)
	}

	book := &model.Book{
		ID:        util.BookID(field, len(library.Books)+1),
		Title:     strings.TrimSpace(create.Title),
		Author:    strings.TrimSpace(create.Author),
		Field:     field,
		Tags:      util.CleanTags(create.Tags),
		FileSize:  filesize,
		Type:      bookType,
		Filename:  filename,
		Path:      relPath,
		AddedDate: s.now().Format(dateLayout),
	}
	library.Books = append(library.Books, book)

	if err := s.metadata.Save(library); err != nil {
		return nil, s.discardFile(relPath, err)
	}

	log.Info("Book created", zap.String("id", book.ID), zap.String("path", book.Path))
	return book, nil
}

// discardFile removes a file whose record could not be saved and returns cause.
func (s *Store) discardFile(relPath string, cause error) error {
	if err := s.files.Remove(relPath); err != nil {
		log.Error("Failed to remove orphaned book file",
			zap.String("path", relPath),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return errors.WithMessagef(cause, "orphaned file %s: %v", relPath, err)
	}
	log.Warn("Removed book file after failed create", zap.String("path", relPath), zap.Error(cause))
	return cause
}

// UpdateBook applies the non-nil attributes of patch. The file stays where it
// is even when the field changes.
func (s *Store) UpdateBook(id string, patch *model.BookPatch) (*model.Book, error) {
	if err := validator.ValidateBookPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return nil, err
	}
	i := library.IndexOf(id)
	if i < 0 {
		return nil, errors.WithMessagef(model.ErrNotFound, "id %q", id)
	}

	book := library.Books[i]
	if v := patch.Title; v != nil {
		book.Title = strings.TrimSpace(*v)
	}
	if v := patch.Author; v != nil {
		book.Author = strings.TrimSpace(*v)
	}
	if v := patch.Field; v != nil {
		book.Field = strings.TrimSpace(*v)
	}
	if v := patch.Tags; v != nil {
		book.Tags = util.CleanTags(*v)
	}
	if v := patch.Type; v != nil {
		book.Type = *v
	}

	if err := s.metadata.Save(library); err != nil {
		return nil, err
	}

	log.Info("Book updated", zap.String("id", id))
	return book, nil
}

// RemoveBook deletes the book file, then its record.
func (s *Store) RemoveBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return err
	}
	i := library.IndexOf(id)
	if i < 0 {
		return errors.WithMessagef(model.ErrNotFound, "id %q", id)
	}

	book := library.Books[i]
	if err := s.files.Remove(book.Path); err != nil {
		return err
	}
	library.Books = slices.Delete(library.Books, i, i+1)

	if err := s.metadata.Save(library); err != nil {
		return err
	}

	log.Info("Book deleted", zap.String("id", id), zap.String("path", book.Path))
	return nil
}

// BookFile returns the book and the filesystem path of its file.
func (s *Store) BookFile(id string) (*model.Book, string, error) {
	book, err := s.GetBook(id)
	if err != nil {
		return nil, "", err
	}
	if !s.files.Exists(book.Path) {
		log.Warn("Book file is missing", zap.String("id", id), zap.String("path", book.Path))
		return nil, "", errors.WithMessagef(model.ErrFileNotFound, "path %q", book.Path)
	}
	return book, s.files.Resolve(book.Path), nil
}
