package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func identityRouter(t *testing.T, pre gin.HandlerFunc) (*gin.Engine, *struct {
	uid  uint
	role string
}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	got := &struct {
		uid  uint
		role string
	}{}
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(Identity())
	r.GET("/me", func(c *gin.Context) {
		got.uid, got.role = UserID(c), UserRole(c)
		c.Status(http.StatusOK)
	})
	return r, got
}

func TestIdentity_Headers(t *testing.T) {
	cases := []struct {
		name     string
		id, role string
		wantCode int
		wantUID  uint
		wantRole string
	}{
		{"anonymous", "", "", http.StatusOK, 0, ""},
		{"user default role", "7", "", http.StatusOK, 7, "USER"},
		{"admin lower-case", " 3 ", "admin", http.StatusOK, 3, "ADMIN"},
		{"not a number", "abc", "", http.StatusBadRequest, 0, ""},
		{"zero", "0", "", http.StatusBadRequest, 0, ""},
		{"negative", "-4", "", http.StatusBadRequest, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, got := identityRouter(t, nil)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.id != "" {
				req.Header.Set(HeaderUserID, tc.id)
			}
			if tc.role != "" {
				req.Header.Set(HeaderUserRole, tc.role)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
			if tc.wantCode == http.StatusBadRequest {
				var body map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_identity" {
					t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
				}
				return
			}
			if got.uid != tc.wantUID || got.role != tc.wantRole {
				t.Fatalf("identity = (%d, %q), want (%d, %q)", got.uid, got.role, tc.wantUID, tc.wantRole)
			}
		})
	}
}

func TestIdentity_UpstreamWins(t *testing.T) {
	r, got := identityRouter(t, func(c *gin.Context) {
		c.Set(ctxKeyUserID, uint(99))
		c.Set(ctxKeyUserRole, "ADMIN")
		c.Next()
	})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, "not-even-a-number")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || got.uid != 99 || got.role != "ADMIN" {
		t.Fatalf("status=%d identity=(%d, %q)", w.Code, got.uid, got.role)
	}
}

func TestUserID_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ctxKeyUserID, "42")
	c.Set(ctxKeyUserRole, 1)
	if UserID(c) != 0 || UserRole(c) != "" {
		t.Fatalf("wrong-typed values must read as anonymous")
	}
}
