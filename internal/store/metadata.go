package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

// Metadata loads and saves the whole library document.
type Metadata interface {
	// Load always returns a usable library, the error tells whether it is
	// an empty fallback for an unreadable document.
	Load() (*model.Library, error)
	Save(library *model.Library) error
}

// MetadataFile is the JSON document on disk.
type MetadataFile struct {
	path string
}

func NewMetadataFile(path string) *MetadataFile {
	return &MetadataFile{path: path}
}

// Init creates an empty document if none exists.
func (m *MetadataFile) Init() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return errors.Wrapf(err, "unable to create metadata folder for %s", m.path)
	}
	if _, err := os.Stat(m.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "unable to access metadata file %s", m.path)
	}
	log.Info("Creating empty metadata file", zap.String("path", m.path))
	return m.Save(model.NewLibrary())
}

func (m *MetadataFile) Load() (*model.Library, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewLibrary(), nil
		}
		return model.NewLibrary(), errors.WithMessagef(model.ErrStoreUnavailable, "read %s: %v", m.path, err)
	}

	library := model.NewLibrary()
	if err := json.Unmarshal(data, library); err != nil {
		return model.NewLibrary(), errors.WithMessagef(model.ErrStoreUnavailable, "decode %s: %v", m.path, err)
	}
	checkBooks(library.Books)
	return library, nil
}

func (m *MetadataFile) Save(library *model.Library) error {
	if library.GeneratedAt != "" {
		library.Summarize()
	}
	data, err := json.MarshalIndent(library, "", "  ")
	if err != nil {
		return errors.WithMessagef(model.ErrPersistence, "encode library: %v", err)
	}
	if _, err := util.WriteAtomic(m.path, bytes.NewReader(data)); err != nil {
		return errors.WithMessagef(model.ErrPersistence, "write %s: %v", m.path, err)
	}
	return nil
}

// checkBooks fills the optional attributes and flags the records that can't
// be addressed. Every record is kept so a later save writes them back as read.
func checkBooks(books []*model.Book) {
	for i, book := range books {
		if book == nil {
			book = &model.Book{}
		}
		if book.ID == "" || book.Title == "" || book.Path == "" {
			log.Warn("Book record is incomplete", zap.Int("index", i), zap.String("id", book.ID))
		}
		if book.Tags == nil {
			book.Tags = make([]string, 0)
		}
		books[i] = book
	}
}
