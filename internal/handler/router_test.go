package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/wanderlog/internal/metrics"
	"github.com/hitoshi/wanderlog/internal/model"
)

// staticVerifier は固定トークンのみ受理するTokenVerifierのテスト用実装。
type staticVerifier struct {
	token  string
	userID string
}

func (v *staticVerifier) Verify(token string) (string, error) {
	if token != v.token {
		return "", errors.New("invalid token")
	}
	return v.userID, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := &RouterDeps{
		TokenVerifier:     &staticVerifier{token: "valid-token", userID: "user-1"},
		CORSAllowedOrigin: "*",
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		RequestRecorder:   collector,
		AuthService: &mockAuthService{
			registerFunc: func(ctx context.Context, fullName, email, password string) (*model.User, string, error) {
				return testUser(), "token-new", nil
			},
			loginFunc: func(ctx context.Context, email, password string) (*model.User, string, error) {
				return testUser(), "token-new", nil
			},
			getUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
				return testUser(), nil
			},
		},
		StoryService: &mockStoryService{
			listFunc: func(ctx context.Context, userID string) ([]*model.TravelStory, error) {
				return []*model.TravelStory{testStory()}, nil
			},
		},
		ImageStore: &mockImageStore{
			saveFunc: func(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
				return "http://localhost:8000/uploads/" + filename, nil
			},
			deleteFunc: func(ctx context.Context, imageURL string) error {
				return nil
			},
		},
		MaxUploadSize: 10 << 20,
		MetricsGather: reg,
		UsageRecorder: collector,
	}

	return NewRouter(deps)
}

func TestRouter_ProtectedRouteWithoutToken_Returns401(t *testing.T) {
	router := newTestRouter(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/get-user"},
		{http.MethodGet, "/get-all-stories"},
		{http.MethodPost, "/add-travel-story"},
		{http.MethodPut, "/edit-story/abc"},
		{http.MethodDelete, "/delete-story/abc"},
		{http.MethodPut, "/update-is-favourite/abc"},
		{http.MethodGet, "/search"},
		{http.MethodGet, "/travel-stories/filter"},
		{http.MethodPost, "/image-upload"},
		{http.MethodDelete, "/delete-image"},
	}

	for _, tt := range protected {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_ProtectedRouteWithValidToken_Succeeds(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/get-all-stories", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp storyListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Stories) != 1 {
		t.Errorf("stories count = %d, want 1", len(resp.Stories))
	}
}

func TestRouter_CreateAccountIsPublic(t *testing.T) {
	router := newTestRouter(t)

	body := `{"fullName":"山田太郎","email":"taro@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/create-account", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestRouter_HealthWithoutDB_Returns200(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", w.Body.String())
	}
}

func TestRouter_MetricsEndpoint_Returns200(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_OptionsPreflight_Returns204(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/get-all-stories", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRouter_ServesUploadedFiles(t *testing.T) {
	uploadDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(uploadDir, "test.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	deps := &RouterDeps{
		TokenVerifier:     &staticVerifier{token: "valid-token", userID: "user-1"},
		CORSAllowedOrigin: "*",
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthService:       &mockAuthService{},
		StoryService:      &mockStoryService{},
		ImageStore:        &mockImageStore{},
		MaxUploadSize:     10 << 20,
		UploadDir:         uploadDir,
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/uploads/test.png", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q, want %q", w.Body.String(), "png-bytes")
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
