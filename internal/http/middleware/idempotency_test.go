package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const createScope = "adoption-requests:create"

type seen struct {
	key            string
	hasKey, replay bool
	bypass         bool
}

// idemRouter mounts POST and GET /adoption-requests plus POST /animals
// behind Identity and the validator; the create route is the only scoped one.
func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) (*gin.Engine, *seen) {
	gin.SetMode(gin.TestMode)
	got := &seen{}
	record := func(c *gin.Context) {
		got.key, got.hasKey = GetIdempotencyKey(c)
		got.replay, got.bypass = IsReplay(c), IsRateBypass(c)
		c.Status(http.StatusCreated)
	}
	r := gin.New()
	r.Use(Identity(), IdempotencyValidator(opts, lookup))
	r.POST("/adoption-requests", record)
	r.GET("/adoption-requests", record)
	r.POST("/animals", record)
	return r, got
}

func scopeCreate(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/adoption-requests" {
		return createScope
	}
	return ""
}

func send(r *gin.Engine, method, path, uid, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if uid != "" {
		req.Header.Set(HeaderUserID, uid)
	}
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_KeyValidation(t *testing.T) {
	cases := []struct {
		name     string
		opts     IdempotencyOptions
		method   string
		key      string
		wantCode int
		wantKey  string
	}{
		{"no header", IdempotencyOptions{}, http.MethodPost, "", http.StatusCreated, ""},
		{"default pattern", IdempotencyOptions{}, http.MethodPost, "retry-7f3a:1", http.StatusCreated, "retry-7f3a:1"},
		{"trimmed", IdempotencyOptions{}, http.MethodPost, "  k1  ", http.StatusCreated, "k1"},
		{"bad chars", IdempotencyOptions{}, http.MethodPost, "key with spaces", http.StatusBadRequest, ""},
		{"default max length", IdempotencyOptions{}, http.MethodPost, strings.Repeat("k", 201), http.StatusBadRequest, ""},
		{"custom max length", IdempotencyOptions{MaxLen: 5}, http.MethodPost, "abcdef", http.StatusBadRequest, ""},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, http.MethodPost, "abc123", http.StatusBadRequest, ""},
		{"safe method ignores header", IdempotencyOptions{MaxLen: 3}, http.MethodGet, "far-too-long!", http.StatusCreated, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, got := idemRouter(tc.opts, nil)
			w := send(r, tc.method, "/adoption-requests", "", tc.key)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode == http.StatusBadRequest {
				if !strings.Contains(w.Body.String(), `"bad_idempotency_key"`) {
					t.Fatalf("body = %s", w.Body.String())
				}
				return
			}
			if got.key != tc.wantKey || got.hasKey != (tc.wantKey != "") {
				t.Fatalf("stashed key = %q (%v), want %q", got.key, got.hasKey, tc.wantKey)
			}
		})
	}
}

func TestIdempotencyValidator_Lookup(t *testing.T) {
	type call struct {
		uid        uint
		scope, key string
	}
	cases := []struct {
		name       string
		uid        string
		path       string
		found      bool
		err        error
		wantCalls  int
		wantReplay bool
	}{
		{"anonymous skips lookup", "", "/adoption-requests", true, nil, 0, false},
		{"unscoped route skips lookup", "9", "/animals", true, nil, 0, false},
		{"miss", "9", "/adoption-requests", false, nil, 1, false},
		{"hit", "9", "/adoption-requests", true, nil, 1, true},
		{"lookup error is a first attempt", "9", "/adoption-requests", false, errors.New("db down"), 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls []call
			lookup := func(_ context.Context, uid uint, scope, key string, now time.Time) (bool, error) {
				if now.IsZero() || now.Location() != time.UTC {
					t.Errorf("lookup now = %v, want UTC", now)
				}
				calls = append(calls, call{uid, scope, key})
				return tc.found, tc.err
			}
			r, got := idemRouter(IdempotencyOptions{Scope: scopeCreate}, lookup)

			if w := send(r, http.MethodPost, tc.path, tc.uid, "k-9"); w.Code != http.StatusCreated {
				t.Fatalf("status = %d", w.Code)
			}
			if len(calls) != tc.wantCalls {
				t.Fatalf("lookup calls = %d, want %d", len(calls), tc.wantCalls)
			}
			if tc.wantCalls == 1 && calls[0] != (call{9, createScope, "k-9"}) {
				t.Fatalf("lookup args = %+v", calls[0])
			}
			if got.replay != tc.wantReplay || got.bypass != tc.wantReplay {
				t.Fatalf("replay=%v bypass=%v, want %v", got.replay, got.bypass, tc.wantReplay)
			}
			if got.key != "k-9" {
				t.Fatalf("key not stashed: %q", got.key)
			}
		})
	}
}

func TestIdempotencyAccessors_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if k, ok := GetIdempotencyKey(c); ok || k != "" {
		t.Fatalf("key = %q, %v", k, ok)
	}
	if IsReplay(c) || IsRateBypass(c) {
		t.Fatal("flags set on a fresh context")
	}
}
