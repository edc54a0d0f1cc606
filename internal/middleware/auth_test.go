package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeParser struct {
	tokens map[string]*casdoorsdk.Claims
}

func (f *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(StudentIDKey))
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	parser := &fakeParser{tokens: map[string]*casdoorsdk.Claims{
		"good":     {User: casdoorsdk.User{Id: "u-1", Owner: "org", Name: "alice"}},
		"name":     {User: casdoorsdk.User{Owner: "org", Name: "bob"}},
		"no-owner": {},
	}}
	r := newRouter(Auth(parser, logger))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me?access_token=name", nil)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org/bob", w.Body.String())

	for _, header := range []string{"", "Bearer bad", "Basic good", "Bearer no-owner"} {
		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, header)
	}
}

func TestDevIdentity(t *testing.T) {
	r := newRouter(DevIdentity())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(StudentIDHeader, "student-9")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-9", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)
}

func TestAuthAssignsRoleFromClaims(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	parser := &fakeParser{tokens: map[string]*casdoorsdk.Claims{
		"admin":      {User: casdoorsdk.User{Id: "u-1", IsAdmin: true}},
		"instructor": {User: casdoorsdk.User{Id: "u-2", Tag: "Instructor"}},
		"student":    {User: casdoorsdk.User{Id: "u-3", Tag: "class-b"}},
	}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(parser, logger))
	r.GET("/role", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RoleKey)) })

	for token, want := range map[string]string{
		"admin":      RoleAdmin,
		"instructor": RoleInstructor,
		"student":    RoleStudent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/role", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code, token)
		assert.Equal(t, want, w.Body.String(), token)
	}
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DevIdentity())
	r.POST("/assessments", RequireStaff(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	tests := []struct {
		role string
		want int
	}{
		{"", http.StatusForbidden},
		{"student", http.StatusForbidden},
		{"superuser", http.StatusForbidden},
		{"instructor", http.StatusCreated},
		{" ADMIN ", http.StatusCreated},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/assessments", nil)
		req.Header.Set(StudentIDHeader, "u-1")
		if tt.role != "" {
			req.Header.Set(RoleHeader, tt.role)
		}
		assert.Equal(t, tt.want, serve(r, req).Code, tt.role)
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}
