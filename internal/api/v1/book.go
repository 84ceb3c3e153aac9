package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
)

// multipartMemory is the part of an upload kept in memory, the rest spills to disk.
const multipartMemory = 32 << 20

func (h *Handler) getMetadata(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, h.store.GetLibrary())
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.store.GetBook(request.RouteStringParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) listFields(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, map[string]interface{}{"fields": h.store.ListFields()})
}

func (h *Handler) searchBooks(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBook{
		Query: request.QueryStringParam(r, "q"),
		Field: request.QueryStringParam(r, "field"),
		Tag:   request.QueryStringParam(r, "tag"),
	}
	response.OK(w, r, h.store.SearchBooks(find))
}

// createBook stores an uploaded file with its metadata. The form carries the
// file and title, author, field, tags (comma separated) and type.
func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	maxSize := h.opts.MaxUploadSize << 20
	if r.ContentLength > maxSize {
		response.RequestEntityTooLarge(w, r, errors.Errorf("File too large, the limit is %d MiB", h.opts.MaxUploadSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RequestEntityTooLarge(w, r, errors.Errorf("File too large, the limit is %d MiB", h.opts.MaxUploadSize))
			return
		}
		response.BadRequest(w, r, errors.Wrap(err, "Invalid upload form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, r, errors.New("No file provided"))
			return
		}
		response.BadRequest(w, r, errors.Wrap(err, "Invalid file part"))
		return
	}
	defer file.Close()

	if mtype, err := mimetype.DetectReader(file); err == nil {
		log.Debug("Received book upload",
			zap.String("filename", header.Filename),
			zap.Int64("size", header.Size),
			zap.String("content_type", mtype.String()))
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		response.ServerError(w, r, errors.Wrap(err, "unable to rewind upload"))
		return
	}

	create := &model.BookCreate{
		Title:    request.FormValue(r, "title"),
		Author:   request.FormValue(r, "author"),
		Field:    request.FormValue(r, "field"),
		Tags:     util.SplitTags(r.FormValue("tags")),
		Type:     request.FormValue(r, "type"),
		Filename: header.Filename,
	}
	book, err := h.store.CreateBook(create, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, r, map[string]interface{}{
		"message": "Book uploaded successfully",
		"book":    book,
	})
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	var patch model.BookPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, r, errors.Wrap(err, "Invalid JSON body"))
		return
	}

	book, err := h.store.UpdateBook(request.RouteStringParam(r, "id"), &patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, r, map[string]interface{}{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveBook(request.RouteStringParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, r, map[string]interface{}{"message": "Book deleted successfully"})
}

func (h *Handler) downloadBook(w http.ResponseWriter, r *http.Request) {
	book, path, err := h.store.BookFile(request.RouteStringParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Attachment(w, r, path, book.Filename)
}

func (h *Handler) viewBook(w http.ResponseWriter, r *http.Request) {
	book, path, err := h.store.BookFile(request.RouteStringParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Inline(w, r, path, book.Filename)
}
