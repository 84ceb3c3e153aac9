package v1

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

// writeError maps a store error to its HTTP status and a client message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrFileNotFound):
		response.NotFound(w, r, errors.New("File not found"))
	case errors.Is(err, model.ErrNotFound):
		response.NotFound(w, r, errors.New("Book not found"))
	case errors.Is(err, model.ErrInvalidFileType):
		response.BadRequest(w, r, errors.New("Invalid file type. "+clientMessage(err, model.ErrInvalidFileType)))
	case errors.Is(err, model.ErrInvalidInput):
		response.BadRequest(w, r, errors.New(clientMessage(err, model.ErrInvalidInput)))
	case errors.Is(err, model.ErrPersistence):
		log.Error("Metadata update failed", zap.String("request_id", request.RequestID(r)), zap.Error(err))
		response.ServerError(w, r, errors.New("Failed to update metadata"))
	default:
		response.ServerError(w, r, err)
	}
}

// clientMessage drops the sentinel from the message chain of err and
// capitalizes the rest.
func clientMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		msg = sentinel.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}
