package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/version"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		log.Warn("Metadata document is unreadable", zap.Error(err))
	}
	response.OK(w, r, map[string]string{
		"status":  "ok",
		"message": "Library server is running",
	})
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, map[string]string{
		"version": version.GetCurrentVersion(),
		"minor":   version.GetMinorVersion(version.GetCurrentVersion()),
	})
}
