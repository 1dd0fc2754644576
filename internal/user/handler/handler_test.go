package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/middleware"
	"github.com/VanillaLatte1/project-ant/internal/token"
	"github.com/VanillaLatte1/project-ant/internal/user"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newRouter(t *testing.T) (*gin.Engine, *token.Codec, *user.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	store := user.NewMemoryStore()

	router := gin.New()
	router.Use(middleware.Authenticate(codec, store))

	api := router.Group("/api")
	api.Use(middleware.RequireAuth())
	NewHandler(store).RegisterRoutes(api)

	return router, codec, store
}

func login(t *testing.T, codec *token.Codec, store *user.MemoryStore) (*user.User, string) {
	t.Helper()
	u, err := store.FindOrCreate(context.Background(), "google", "123", "a@b.com")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	tok, err := codec.Issue(u.Key(), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return u, tok
}

func do(router *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMe(t *testing.T) {
	router, codec, store := newRouter(t)
	u, tok := login(t, codec, store)

	w := do(router, http.MethodGet, "/api/users/me", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		ID       string  `json:"id"`
		Email    *string `json:"email"`
		Name     *string `json:"name"`
		Provider string  `json:"provider"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != u.ID.String() {
		t.Errorf("id = %q, want %q", resp.ID, u.ID.String())
	}
	if resp.Email == nil || *resp.Email != "a@b.com" {
		t.Errorf("email = %v, want a@b.com", resp.Email)
	}
	if resp.Name != nil {
		t.Errorf("name = %v, want null", resp.Name)
	}
	if resp.Provider != "google" {
		t.Errorf("provider = %q, want google", resp.Provider)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	router, _, _ := newRouter(t)

	w := do(router, http.MethodGet, "/api/users/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	router, codec, store := newRouter(t)
	_, tok := login(t, codec, store)

	w := do(router, http.MethodPut, "/api/users/me", tok, `{"name":"New Name"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"imageUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name == nil || *resp.Name != "New Name" {
		t.Errorf("name = %v, want New Name", resp.Name)
	}
	// Omitted field stays untouched (still absent here).
	if resp.ImageURL != nil {
		t.Errorf("imageUrl = %v, want null", resp.ImageURL)
	}

	// Second update touching only the image keeps the name.
	w = do(router, http.MethodPut, "/api/users/me", tok, `{"imageUrl":"http://img"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name == nil || *resp.Name != "New Name" {
		t.Errorf("name after image update = %v, want New Name", resp.Name)
	}
	if resp.ImageURL == nil || *resp.ImageURL != "http://img" {
		t.Errorf("imageUrl = %v, want http://img", resp.ImageURL)
	}
}

func TestUpdateMe_FieldLimits(t *testing.T) {
	router, codec, store := newRouter(t)
	_, tok := login(t, codec, store)

	longName := strings.Repeat("n", 101)
	w := do(router, http.MethodPut, "/api/users/me", tok, `{"name":"`+longName+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversize name status = %d, want 400", w.Code)
	}

	longURL := strings.Repeat("u", 501)
	w = do(router, http.MethodPut, "/api/users/me", tok, `{"imageUrl":"`+longURL+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversize imageUrl status = %d, want 400", w.Code)
	}
}

func TestDeleteMe(t *testing.T) {
	router, codec, store := newRouter(t)
	u, tok := login(t, codec, store)

	w := do(router, http.MethodDelete, "/api/users/me", tok, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if _, err := store.FindByProviderAndID(context.Background(), u.Provider, u.ProviderID); err == nil {
		t.Error("record still present after deletion")
	}

	// The still-unexpired access token now references a deleted
	// identity: the pipeline resolves nobody and the route rejects.
	w = do(router, http.MethodGet, "/api/users/me", tok, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after delete status = %d, want 401", w.Code)
	}
}
