package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

type LocalStorage struct {
	// Path to the repository root
	Path string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{Path: root}
}

// Init creates the repository root if needed.
func (s *LocalStorage) Init() error {
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return errors.Wrapf(err, "unable to create books folder %s", s.Path)
	}
	return nil
}

func (s *LocalStorage) Resolve(relPath string) string {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if relPath == "" || clean == "." || filepath.IsAbs(clean) ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.Join(s.Path, clean)
}

func (s *LocalStorage) Store(field, filename string, content io.Reader) (string, error) {
	dir := util.FieldDir(field)
	relPath := path.Join(dir, filename)
	target := s.Resolve(relPath)
	if target == "" || path.Dir(relPath) != dir {
		return "", errors.WithMessagef(model.ErrInvalidInput, "invalid book path %q", relPath)
	}

	// Create directories if not exist
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.WithMessagef(model.ErrIO, "create field directory %s: %v", dir, err)
	}

	// Calculate hash while the file is written
	hash := sha256.New()
	size, err := util.WriteAtomic(target, io.TeeReader(content, hash))
	if err != nil {
		return "", errors.WithMessagef(model.ErrIO, "write %s: %v", relPath, err)
	}

	log.Debug("Stored book file",
		zap.String("path", target),
		zap.Int64("size", size),
		zap.String("hash", hex.EncodeToString(hash.Sum(nil))))
	return relPath, nil
}

func (s *LocalStorage) Remove(relPath string) error {
	target := s.Resolve(relPath)
	if target == "" {
		return errors.WithMessagef(model.ErrInvalidInput, "invalid book path %q", relPath)
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("Book file already absent", zap.String("path", target))
			return nil
		}
		return errors.WithMessagef(model.ErrIO, "remove %s: %v", relPath, err)
	}
	log.Debug("Removed book file", zap.String("path", target))
	return nil
}

func (s *LocalStorage) SizeOf(relPath string) (string, error) {
	target := s.Resolve(relPath)
	if target == "" {
		return "", errors.WithMessagef(model.ErrInvalidInput, "invalid book path %q", relPath)
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", errors.WithMessagef(model.ErrIO, "stat %s: %v", relPath, err)
	}
	return util.FormatFileSize(info.Size()), nil
}

func (s *LocalStorage) Exists(relPath string) bool {
	target := s.Resolve(relPath)
	if target == "" {
		return false
	}
	info, err := os.Stat(target)
	return err == nil && info.Mode().IsRegular()
}
