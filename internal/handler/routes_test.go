package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/middleware"
	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/internal/service"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

type tokenAuthenticator struct {
	tokens map[string]*models.Principal
}

func (a tokenAuthenticator) ValidateSession(ctx context.Context, token string) (*models.Principal, error) {
	if p, ok := a.tokens[token]; ok {
		return p, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func (a tokenAuthenticator) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	return nil, appErrors.ErrInvalidCredentials
}

func newTestRouter(rooms *roomServiceStub) *gin.Engine {
	return newExportRouter(rooms, &exporterStub{file: &service.ExportFile{Filename: "students.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Content: []byte("PK")}})
}

func newExportRouter(rooms *roomServiceStub, exports *exporterStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authn := tokenAuthenticator{tokens: map[string]*models.Principal{
		"alice-token": {ID: 7, Username: "alice"},
	}}

	r := gin.New()
	RegisterRoutes(r, "/api", Routes{
		Users:   NewUserHandler(&sessionServiceStub{}, CookieConfig{}),
		Exports: NewExportHandler(exports),
		Metrics: NewMetricsHandler(nil, nil),
		Resources: []ResourceRoute{
			{Path: "/rooms", Handler: NewResourceHandler[models.Room, service.RoomRequest, service.RoomPatch](rooms)},
		},
		RequireAuth:  middleware.Auth(authn, "sessionid"),
		OptionalAuth: middleware.OptionalAuth(authn, "sessionid"),
	})
	return r
}

func TestRoutesRequireSession(t *testing.T) {
	r := newTestRouter(&roomServiceStub{})

	for _, target := range []string{"/api/rooms", "/api/rooms/stats", "/api/students/export-word", "/api/students/export-pdf", "/api/user/list"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestRoutesAcceptSessionCookie(t *testing.T) {
	rooms := &roomServiceStub{rooms: []models.Room{}}
	r := newTestRouter(rooms)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "alice-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), rooms.lastScope.AccountID)
}

func TestRoutesExportNotShadowedByID(t *testing.T) {
	r := newTestRouter(&roomServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/students/export-word", nil)
	req.Header.Set("Authorization", "Bearer alice-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students.docx"`, w.Header().Get("Content-Disposition"))
}

func TestRoutesExportFormats(t *testing.T) {
	cases := map[string]string{
		"/api/students/export-excel": service.ExportFormatXLSX,
		"/api/students/export-word":  service.ExportFormatDOCX,
		"/api/students/export-pdf":   service.ExportFormatPDF,
		"/api/students/export-csv":   service.ExportFormatCSV,
	}
	for target, format := range cases {
		exports := &exporterStub{file: &service.ExportFile{Filename: "students." + format, ContentType: "application/octet-stream"}}
		r := newExportRouter(&roomServiceStub{}, exports)

		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer alice-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, format, exports.format, target)
	}
}

func TestRoutesPublicEndpoints(t *testing.T) {
	r := newTestRouter(&roomServiceStub{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_authenticated":false`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
