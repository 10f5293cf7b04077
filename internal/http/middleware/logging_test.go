package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_PropagatesOrGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/animals", func(c *gin.Context) {
		seen = RequestIDFrom(c)
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"missing", "", false},
		{"propagated", "adopt-7f3a", true},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control chars", "abc\tdef", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/animals", nil)
			if tc.incoming != "" {
				req.Header.Set(requestIDHeader, tc.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if (got == tc.incoming) != tc.keep {
				t.Fatalf("incoming %q -> %q, keep=%v", tc.incoming, got, tc.keep)
			}
		})
	}
}

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Identity(), RedactingLogger(RedactOptions{}), Recovery())
	r.PUT("/adoption-requests/:id/status", func(c *gin.Context) { panic("decision exploded") })

	req := httptest.NewRequest(http.MethodPut, "/adoption-requests/3/status", nil)
	req.Header.Set(requestIDHeader, "rid-panic")
	req.Header.Set(HeaderUserID, "9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-panic" {
		t.Fatalf("body = %v", body)
	}

	var panicLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"message":"panic recovered"`) {
			panicLine = line
		}
	}
	if panicLine == "" {
		t.Fatalf("no panic log in:\n%s", buf.String())
	}
	for _, want := range []string{`"request_id":"rid-panic"`, `"user_id":9`, `"route":"/adoption-requests/:id/status"`, `"stack"`} {
		if !strings.Contains(panicLine, want) {
			t.Errorf("panic log missing %s: %s", want, panicLine)
		}
	}
}

func TestRecovery_PanicAfterWriteKeepsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/animals", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/animals", nil))
	if strings.Contains(w.Body.String(), "internal_error") {
		t.Fatalf("error body appended after write: %q", w.Body.String())
	}
}

func TestLoggerFrom_FallsBackToGlobal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	LoggerFrom(c).Info().Msg("no scope")
	if strings.Contains(buf.String(), "request_id") || !strings.Contains(buf.String(), "no scope") {
		t.Fatalf("fallback log = %s", buf.String())
	}
}

func TestRequestLogger_AnonymousOmitsUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	l := requestLogger(c, "rid-anon")
	l.Info().Msg("browse")
	if strings.Contains(buf.String(), "user_id") || !strings.Contains(buf.String(), `"request_id":"rid-anon"`) {
		t.Fatalf("anonymous log = %s", buf.String())
	}

	buf.Reset()
	c.Set(ctxKeyUserID, uint(4))
	c.Set(ctxKeyUserRole, "ADMIN")
	l = requestLogger(c, "rid-admin")
	l.Info().Msg("decide")
	if !strings.Contains(buf.String(), `"user_id":4`) || !strings.Contains(buf.String(), `"user_role":"ADMIN"`) {
		t.Fatalf("admin log = %s", buf.String())
	}
}
