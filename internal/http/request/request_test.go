package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestFindClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.4, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.4"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.7"}, "10.0.0.1:1234", "198.51.100.7"},
		{"invalid header", map[string]string{"X-Forwarded-For": "garbage"}, "192.0.2.1:80", "192.0.2.1"},
		{"ipv6 zone", nil, "[fe80::1%eth0]:80", "fe80::1"},
		{"unix socket", nil, "", "127.0.0.1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = c.remote
			for k, v := range c.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, c.want, FindClientIP(r))
		})
	}
}

func TestContextValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ClientIP(r))

	ctx := context.WithValue(r.Context(), ClientIPContextKey, "192.0.2.1")
	ctx = context.WithValue(ctx, RequestIDContextKey, "abc")
	r = r.WithContext(ctx)
	assert.Equal(t, "192.0.2.1", ClientIP(r))
	assert.Equal(t, "abc", RequestID(r))
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/books/Physics_1?q=%20gauss%20&field=", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "Physics_1"})

	assert.Equal(t, "Physics_1", RouteStringParam(r, "id"))
	if q := QueryStringParam(r, "q"); assert.NotNil(t, q) {
		assert.Equal(t, " gauss ", *q)
	}
	assert.Nil(t, QueryStringParam(r, "field"))
	assert.Nil(t, QueryStringParam(r, "tag"))
}
