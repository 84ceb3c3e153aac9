package request

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// RouteStringParam returns a URL route parameter as string.
func RouteStringParam(r *http.Request, param string) string {
	vars := mux.Vars(r)
	return vars[param]
}

// QueryStringParam returns a query string parameter as sent, or nil when it
// is absent or empty.
func QueryStringParam(r *http.Request, param string) *string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil
	}
	return &value
}

// FormValue returns a trimmed multipart or urlencoded form value.
func FormValue(r *http.Request, param string) string {
	return strings.TrimSpace(r.FormValue(param))
}
