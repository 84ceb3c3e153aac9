package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/storage"
)

type failingSave struct {
	Metadata
}

func (f *failingSave) Save(*model.Library) error {
	return errors.WithMessage(model.ErrPersistence, "disk full")
}

type testStore struct {
	*Store
	root     string
	metaPath string
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	dir := t.TempDir()
	opts := config.GetDefaultOptions()
	opts.Data = dir
	root := opts.BooksPath()
	metaPath := opts.MetadataPath()

	files := storage.NewLocalStorage(root)
	require.NoError(t, files.Init())
	metadata := NewMetadataFile(metaPath)
	require.NoError(t, metadata.Init())

	s := NewStore(metadata, files, opts)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	return &testStore{Store: s, root: root, metaPath: metaPath}
}

func create(title, author, field, filename string, tags ...string) *model.BookCreate {
	return &model.BookCreate{
		Title:    title,
		Author:   author,
		Field:    field,
		Tags:     tags,
		Filename: filename,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestCreateGetDelete(t *testing.T) {
	s := newTestStore(t)

	book, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf", "a", " b ", ""),
		strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, "Physics_1", book.ID)
	assert.Equal(t, []string{"a", "b"}, book.Tags)
	assert.Equal(t, "Physics/relativity.pdf", book.Path)
	assert.Equal(t, "relativity.pdf", book.Filename)
	assert.Equal(t, "book", book.Type)
	assert.Equal(t, "2024-03-09", book.AddedDate)
	assert.Equal(t, "13.0 B", book.FileSize)
	assert.FileExists(t, filepath.Join(s.root, "Physics", "relativity.pdf"))

	got, err := s.GetBook("Physics_1")
	require.NoError(t, err)
	assert.Equal(t, book, got)

	_, path, err := s.BookFile("Physics_1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.root, "Physics", "relativity.pdf"), path)

	require.NoError(t, s.RemoveBook("Physics_1"))
	assert.NoFileExists(t, filepath.Join(s.root, "Physics", "relativity.pdf"))
	_, err = s.GetBook("Physics_1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, s.ListBooks())
}

func TestCreateDefaults(t *testing.T) {
	s := newTestStore(t)

	book, err := s.CreateBook(create("  Notes ", " Me ", "", "My Notes.epub"), strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "Notes", book.Title)
	assert.Equal(t, "Me", book.Author)
	assert.Equal(t, "Uncategorized", book.Field)
	assert.Equal(t, "Uncategorized_1", book.ID)
	assert.Equal(t, "My_Notes.epub", book.Filename)
	assert.Equal(t, "Uncategorized/My_Notes.epub", book.Path)

	book, err = s.CreateBook(create("Intro", "Someone", "Computer Science", "intro.mobi"), strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "Computer_Science_2", book.ID)
	assert.Equal(t, "Computer Science", book.Field)
	assert.Equal(t, "Computer_Science/intro.mobi", book.Path)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateBook(create("Notes", "Me", "Misc", "notes.txt"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidFileType)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.NoDirExists(t, filepath.Join(s.root, "Misc"))

	_, err = s.CreateBook(create("", "Me", "Misc", "notes.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.CreateBook(create("Notes", "  ", "Misc", "notes.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.CreateBook(create("Notes", "Me", "../etc", "notes.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.CreateBook(create("Notes", "Me", "Misc", "日本.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	assert.Empty(t, s.ListBooks())
}

func TestCreateRollbackOnSaveFailure(t *testing.T) {
	s := newTestStore(t)
	s.metadata = &failingSave{Metadata: s.metadata}

	_, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.NoFileExists(t, filepath.Join(s.root, "Physics", "relativity.pdf"))
	assert.Empty(t, s.ListBooks())
}

func TestUpdateKeepsRecordOnSaveFailure(t *testing.T) {
	s := newTestStore(t)
	book, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf"), strings.NewReader("x"))
	require.NoError(t, err)
	s.metadata = &failingSave{Metadata: s.metadata}

	_, err = s.UpdateBook(book.ID, &model.BookPatch{Title: strPtr("Gravitation")})
	assert.ErrorIs(t, err, model.ErrPersistence)

	got, err := s.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relativity", got.Title)
}

func TestRemoveKeepsRecordOnSaveFailure(t *testing.T) {
	s := newTestStore(t)
	book, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf"), strings.NewReader("x"))
	require.NoError(t, err)
	s.metadata = &failingSave{Metadata: s.metadata}

	assert.ErrorIs(t, s.RemoveBook(book.ID), model.ErrPersistence)

	// The file goes first, the record stays behind.
	assert.NoFileExists(t, filepath.Join(s.root, "Physics", "relativity.pdf"))
	got, err := s.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Path, got.Path)
	_, _, err = s.BookFile(book.ID)
	assert.ErrorIs(t, err, model.ErrFileNotFound)
}

func TestIncompleteRecordsAreKept(t *testing.T) {
	s := newTestStore(t)
	doc := `{"books":[
		{"id":"Physics_1","title":"","author":"A","field":"Physics","path":"Physics/a.pdf"},
		null,
		{"id":"Physics_3","title":"B","author":"B","field":"Physics","path":"Physics/b.pdf"}
	]}`
	require.NoError(t, os.WriteFile(s.metaPath, []byte(doc), 0644))

	books := s.ListBooks()
	require.Len(t, books, 3)
	assert.Equal(t, []string{}, books[0].Tags)

	book, err := s.CreateBook(create("Optics", "Newton", "Physics", "optics.pdf"), strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "Physics_4", book.ID)

	data, err := os.ReadFile(s.metaPath)
	require.NoError(t, err)
	var saved struct {
		Books []*model.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Len(t, saved.Books, 4)
	assert.Equal(t, "Physics_1", saved.Books[0].ID)
	assert.Equal(t, "", saved.Books[0].Title)
	assert.Equal(t, "Physics_3", saved.Books[2].ID)
	assert.Equal(t, "Physics_4", saved.Books[3].ID)
}

func TestMalformedMetadata(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.metaPath, []byte("{not json"), 0644))

	assert.Empty(t, s.ListBooks())
	assert.ErrorIs(t, s.Ping(), model.ErrStoreUnavailable)

	_, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf"), strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.NoFileExists(t, filepath.Join(s.root, "Physics", "relativity.pdf"))

	data, err := os.ReadFile(s.metaPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestMissingMetadataIsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.Remove(s.metaPath))

	assert.NoError(t, s.Ping())
	assert.Empty(t, s.ListBooks())
	assert.Empty(t, s.ListFields())
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	book, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf", "a"), strings.NewReader("x"))
	require.NoError(t, err)

	tags := []string{" x ", "", "y"}
	updated, err := s.UpdateBook(book.ID, &model.BookPatch{
		Title: strPtr("General Relativity"),
		Field: strPtr("Astronomy"),
		Tags:  &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "General Relativity", updated.Title)
	assert.Equal(t, "Einstein", updated.Author)
	assert.Equal(t, "Astronomy", updated.Field)
	assert.Equal(t, []string{"x", "y"}, updated.Tags)
	assert.Equal(t, book.ID, updated.ID)
	assert.Equal(t, book.Path, updated.Path)
	assert.Equal(t, book.AddedDate, updated.AddedDate)

	got, err := s.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = s.UpdateBook(book.ID, &model.BookPatch{Title: strPtr(" ")})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = s.UpdateBook("Nope_1", &model.BookPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRemoveBook(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.RemoveBook("Nope_1"), model.ErrNotFound)

	book, err := s.CreateBook(create("Relativity", "Einstein", "Physics", "relativity.pdf"), strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.root, "Physics", "relativity.pdf")))

	_, _, err = s.BookFile(book.ID)
	assert.ErrorIs(t, err, model.ErrFileNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.RemoveBook(book.ID))
	assert.Empty(t, s.ListBooks())
}

func TestSearchBooks(t *testing.T) {
	s := newTestStore(t)
	for _, c := range []*model.BookCreate{
		create("Relativity", "Einstein", "Physics", "a.pdf", "classic", "theory"),
		create("Cosmos", "Sagan", "Astronomy", "b.epub", "popular"),
		create("Quantum Theory", "Bohm", "Physics", "c.pdf", "quantum"),
	} {
		_, err := s.CreateBook(c, strings.NewReader("x"))
		require.NoError(t, err)
	}

	titles := func(result *model.SearchResult) []string {
		var out []string
		for _, book := range result.Books {
			out = append(out, book.Title)
		}
		assert.Equal(t, len(result.Books), result.Count)
		return out
	}

	assert.Equal(t, []string{"Relativity", "Cosmos", "Quantum Theory"}, titles(s.SearchBooks(&model.FindBook{})))
	assert.Equal(t, []string{"Relativity", "Quantum Theory"}, titles(s.SearchBooks(&model.FindBook{Query: strPtr("THEORY")})))
	assert.Equal(t, []string{"Cosmos"}, titles(s.SearchBooks(&model.FindBook{Query: strPtr("sag")})))
	assert.Equal(t, []string{"Quantum Theory"}, titles(s.SearchBooks(&model.FindBook{Query: strPtr(" theory")})))
	assert.Equal(t, []string{"Relativity", "Quantum Theory"}, titles(s.SearchBooks(&model.FindBook{Field: strPtr("Physics")})))
	assert.Equal(t, []string{"Quantum Theory"}, titles(s.SearchBooks(&model.FindBook{Field: strPtr("Physics"), Tag: strPtr("quantum")})))
	assert.Empty(t, s.SearchBooks(&model.FindBook{Tag: strPtr("quant")}).Books)
	assert.Equal(t, 0, s.SearchBooks(&model.FindBook{Field: strPtr("physics")}).Count)

	assert.Equal(t, []string{"Astronomy", "Physics"}, s.ListFields())
}

func TestConcurrentCreates(t *testing.T) {
	s := newTestStore(t)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i)) + ".pdf"
			_, err := s.CreateBook(create("Book", "Author", "Misc", name), strings.NewReader("x"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	books := s.ListBooks()
	require.Len(t, books, n)
	ids := make(map[string]bool)
	for _, book := range books {
		ids[book.ID] = true
	}
	assert.Len(t, ids, n)
}
