package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"trokazz-server/internal/api"
	"trokazz-server/internal/auth"
	"trokazz-server/internal/config"
	"trokazz-server/internal/database"
	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func adParams(userId string) store.CreateAdParams {
	return store.CreateAdParams{
		UserId:      userId,
		Title:       "Road bike",
		Description: "Fast",
		Price:       decimal.NewFromInt(250),
	}
}

type testEnv struct {
	router  *gin.Engine
	service *api.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	authManager, err := auth.NewManager(models.AuthConfig{
		JWTSecret: "test-secret-test-secret-test-secret",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create auth manager: %v", err)
	}

	pricing := &config.Pricing{
		Boost:       config.BoostPricing{BaseCost: 25, DurationDays: 7},
		Renewal:     config.RenewalPolicy{WindowDays: 7, ExtensionDays: 30},
		SignupBonus: 100,
	}

	service := api.NewService(db, pricing, authManager)
	handler := NewHandler(service, nil)
	router := handler.SetupRouter(RouterOptions{AuthManager: authManager})

	return &testEnv{router: router, service: service}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email string) (userId, token string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":        email,
		"display_name": "Test User",
		"password":     "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.User.Id, resp.Token
}

func TestHealthz(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	env := setupTestEnv(t)

	env.register(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestAdLifecycleOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.register(t, "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/ads", token, gin.H{
		"title":       "Road bike",
		"description": "Fast",
		"price":       "250",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ad failed with %d: %s", rec.Code, rec.Body.String())
	}
	var ad models.Advertisement
	if err := json.Unmarshal(rec.Body.Bytes(), &ad); err != nil {
		t.Fatalf("failed to decode ad: %v", err)
	}
	if ad.Status != models.AdStatusPendingApproval {
		t.Fatalf("expected pending_approval, got %s", ad.Status)
	}

	// Pending ads are invisible in the public listing.
	rec = env.do(t, http.MethodGet, "/api/v1/ads", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list ads failed with %d", rec.Code)
	}
	var listed []models.Advertisement
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty public listing, got %d ads", len(listed))
	}

	// The owner still sees it under /my/ads.
	rec = env.do(t, http.MethodGet, "/api/v1/my/ads", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list my ads failed with %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one owned ad, got %d", len(listed))
	}
}

func TestBoostConflictsOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	userId, token := env.register(t, "alice@example.com")
	ctx := context.Background()

	ad, err := env.service.CreateAd(ctx, adParams(userId))
	if err != nil {
		t.Fatalf("failed to create ad: %v", err)
	}
	err = env.service.ResolveModerationItem(ctx, api.ResolveParams{
		Kind:    models.ModerationItemAd,
		ItemId:  ad.Id,
		Action:  models.ModerationApprove,
		AdminId: "admin",
	})
	if err != nil {
		t.Fatalf("failed to approve ad: %v", err)
	}

	first := env.do(t, http.MethodPost, "/api/v1/ads/"+ad.Id+"/boost", token, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first boost should succeed, got %d: %s", first.Code, first.Body.String())
	}

	second := env.do(t, http.MethodPost, "/api/v1/ads/"+ad.Id+"/boost", token, nil)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 for re-boost, got %d: %s", second.Code, second.Body.String())
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.register(t, "alice@example.com")

	rec := env.do(t, http.MethodGet, "/api/v1/admin/moderation/queue", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/admin/moderation/queue", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	userId, token := env.register(t, "alice@example.com")
	ctx := context.Background()

	if _, err := env.service.GrantCredits(ctx, userId, 10, "test grant"); err != nil {
		t.Fatalf("failed to grant credits: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/notifications/unread", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unread count failed with %d", rec.Code)
	}
	var unread struct {
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &unread); err != nil {
		t.Fatalf("failed to decode unread count: %v", err)
	}
	if unread.Unread != 1 {
		t.Fatalf("expected one unread notification, got %d", unread.Unread)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/notifications/read-all", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("read-all failed with %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/notifications/unread", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &unread); err != nil {
		t.Fatalf("failed to decode unread count: %v", err)
	}
	if unread.Unread != 0 {
		t.Fatalf("expected zero unread after read-all, got %d", unread.Unread)
	}
}
