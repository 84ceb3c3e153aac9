package response

import (
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
)

// Attachment asks the browser to save the file as filename.
func Attachment(w http.ResponseWriter, r *http.Request, path, filename string) {
	serveFile(w, r, path, "attachment", filename)
}

// Inline lets the browser display the file, the content type is sniffed from
// its first bytes.
func Inline(w http.ResponseWriter, r *http.Request, path, filename string) {
	serveFile(w, r, path, "inline", filename)
}

func serveFile(w http.ResponseWriter, r *http.Request, path, disposition, filename string) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			NotFound(w, r, errors.New("file not found"))
			return
		}
		ServerError(w, r, errors.Wrap(err, "unable to open book file"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		ServerError(w, r, errors.Wrap(err, "unable to stat book file"))
		return
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		ServerError(w, r, errors.Wrap(err, "unable to detect content type"))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		ServerError(w, r, errors.Wrap(err, "unable to rewind book file"))
		return
	}

	header := w.Header()
	header.Set("Content-Type", mtype.String())
	header.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("X-Frame-Options", "DENY")

	log.Debug("Serving book file",
		zap.String("path", path),
		zap.String("content_type", mtype.String()),
		zap.String("disposition", disposition),
		zap.Int64("size", info.Size()))

	http.ServeContent(w, r, filename, info.ModTime(), f)
}
