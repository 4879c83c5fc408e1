//go:build !integration

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recoEngine/business/bandit"

	"github.com/labstack/echo/v4"
)

func newServer(mw ...echo.MiddlewareFunc) (*echo.Echo, *string) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	var seen string
	e.Use(mw...)
	e.GET("/ping", func(c echo.Context) error {
		seen = bandit.TraceIDFromContext(c.Request().Context())
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("db password is hunter2")
	})
	return e, &seen
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTraceID_PropagatesHeader(t *testing.T) {
	e, seen := newServer(TraceID())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := serve(e, req)

	if *seen != "req-123" {
		t.Errorf("context trace id = %q", *seen)
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "req-123" {
		t.Errorf("response header = %q", got)
	}
}

func TestTraceID_Generates(t *testing.T) {
	e, seen := newServer(TraceID())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if *seen == "" {
		t.Fatal("expected a generated trace id")
	}
	if rec.Header().Get(echo.HeaderXRequestID) != *seen {
		t.Errorf("header %q != context %q", rec.Header().Get(echo.HeaderXRequestID), *seen)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	e := echo.New()
	e.POST("/write", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, APIKeyMiddleware("s3cret"))

	cases := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusUnauthorized},
		{"s3cret", http.StatusCreated},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		if tc.key != "" {
			req.Header.Set(HeaderAPIKey, tc.key)
		}
		if rec := serve(e, req); rec.Code != tc.want {
			t.Errorf("key %q: status = %d, want %d", tc.key, rec.Code, tc.want)
		}
	}
}

func TestAPIKeyMiddleware_DisabledWithoutKey(t *testing.T) {
	e := echo.New()
	e.POST("/write", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, APIKeyMiddleware(""))

	if rec := serve(e, httptest.NewRequest(http.MethodPost, "/write", nil)); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestErrorHandler(t *testing.T) {
	e, _ := newServer()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d", rec.Code)
	}
}
