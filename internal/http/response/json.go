package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/log"
)

const contentTypeHeader = `application/json`

// OK creates a new JSON response with a 200 status code.
func OK(w http.ResponseWriter, r *http.Request, body interface{}) {
	builder := New(w, r)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSON(body))
	builder.Write()
}

// Created sends a created response to the client.
func Created(w http.ResponseWriter, r *http.Request, body interface{}) {
	builder := New(w, r)
	builder.WithStatus(http.StatusCreated)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSON(body))
	builder.Write()
}

// ServerError sends an internal error to the client.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error(http.StatusText(http.StatusInternalServerError),
		requestFields(r, http.StatusInternalServerError, zap.Error(err))...,
	)

	writeError(w, r, http.StatusInternalServerError, err)
}

// BadRequest sends a bad request error to the client.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn(http.StatusText(http.StatusBadRequest),
		requestFields(r, http.StatusBadRequest, zap.Error(err))...,
	)

	writeError(w, r, http.StatusBadRequest, err)
}

// NotFound sends a not found error to the client, err defaults to "resource not found".
func NotFound(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		err = errors.New("resource not found")
	}
	log.Warn(http.StatusText(http.StatusNotFound),
		requestFields(r, http.StatusNotFound, zap.Error(err))...,
	)

	writeError(w, r, http.StatusNotFound, err)
}

// RequestEntityTooLarge sends a payload too large error to the client.
func RequestEntityTooLarge(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn(http.StatusText(http.StatusRequestEntityTooLarge),
		requestFields(r, http.StatusRequestEntityTooLarge, zap.Error(err))...,
	)

	writeError(w, r, http.StatusRequestEntityTooLarge, err)
}

// TooManyRequests sends a rate limit error to the client.
func TooManyRequests(w http.ResponseWriter, r *http.Request) {
	log.Warn(http.StatusText(http.StatusTooManyRequests),
		requestFields(r, http.StatusTooManyRequests)...,
	)

	builder := New(w, r)
	builder.WithStatus(http.StatusTooManyRequests)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSONError(errors.New("too many requests")))
	builder.Write()
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	builder := New(w, r)
	builder.WithStatus(status)
	builder.WithHeader("Content-Type", contentTypeHeader)
	builder.WithBody(toJSONError(err))
	builder.Write()
}

func requestFields(r *http.Request, status int, extra ...zap.Field) []zap.Field {
	return append(extra,
		zap.String("client_ip", request.FindClientIP(r)),
		zap.String("request_id", request.RequestID(r)),
		zap.String("request.method", r.Method),
		zap.String("request.uri", r.RequestURI),
		zap.String("request.user_agent", r.UserAgent()),
		zap.Int("response.status_code", status),
	)
}

func toJSONError(err error) []byte {
	type errorMsg struct {
		Error string `json:"error"`
	}

	return toJSON(errorMsg{Error: err.Error()})
}

func toJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("Unable to marshal JSON response", zap.Error(err))
		return []byte("")
	}

	return b
}
