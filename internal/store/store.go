package store // import "github.com/Xunop/e-library/internal/store"

import (
	"sync"
	"time"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/storage"
)

// Store is the catalog: it keeps the metadata document and the book files
// consistent with each other.
type Store struct {
	metadata Metadata
	files    storage.Storage
	opts     *config.Options
	// mu serializes every load-mutate-save cycle of the metadata document.
	// It does not protect against other processes writing the file.
	mu  sync.Mutex
	now func() time.Time
}

func NewStore(metadata Metadata, files storage.Storage, opts *config.Options) *Store {
	return &Store{
		metadata: metadata,
		files:    files,
		opts:     opts,
		now:      time.Now,
	}
}

// Ping checks that the metadata document can be read.
func (s *Store) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.metadata.Load()
	return err
}
