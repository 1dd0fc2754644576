package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/auth/provider"
	"github.com/VanillaLatte1/project-ant/internal/auth/state"
	"github.com/VanillaLatte1/project-ant/internal/token"
	"github.com/VanillaLatte1/project-ant/internal/user"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	router *gin.Engine
	store  *user.MemoryStore
	codec  *token.Codec
	issuer *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	store := user.NewMemoryStore()
	issuer := token.NewIssuer(codec, store, 30*time.Minute, 14*24*time.Hour)

	h := NewHandler(
		provider.NewRegistry(),
		state.NewMemoryStore(),
		store,
		codec,
		issuer,
		"http://localhost:3000/oauth/redirect",
	)

	router := gin.New()
	h.RegisterRoutes(router)

	return &fixture{router: router, store: store, codec: codec, issuer: issuer}
}

func (f *fixture) post(t *testing.T, path, refreshToken string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"refreshToken":` + jsonString(refreshToken) + `}`
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (f *fixture) loggedInUser(t *testing.T) (*user.User, token.Pair) {
	t.Helper()
	u, err := f.store.FindOrCreate(context.Background(), "google", "123", "a@b.com")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	pair, err := f.issuer.IssuePair(context.Background(), u)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	return u, pair
}

func TestRefresh_RotatesPair(t *testing.T) {
	f := newFixture(t)
	_, pair := f.loggedInUser(t)

	w := f.post(t, "/api/auth/refresh", pair.RefreshToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		TokenType    string `json:"tokenType"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("tokenType = %q, want Bearer", resp.TokenType)
	}
	if resp.RefreshToken == pair.RefreshToken {
		t.Error("refresh must rotate the refresh token")
	}
	if _, err := f.codec.Verify(resp.AccessToken); err != nil {
		t.Errorf("new access token invalid: %v", err)
	}

	// The just-used refresh token was rotated away: a second refresh
	// with it must fail.
	w = f.post(t, "/api/auth/refresh", pair.RefreshToken)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("replayed refresh status = %d, want 401", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("401 body = %q, want empty", w.Body.String())
	}

	// The rotated-to token still works.
	w = f.post(t, "/api/auth/refresh", resp.RefreshToken)
	if w.Code != http.StatusOK {
		t.Errorf("rotated token refresh status = %d, want 200", w.Code)
	}
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	f := newFixture(t)

	for _, tok := range []string{"", "garbage", "aaa.bbb.ccc"} {
		w := f.post(t, "/api/auth/refresh", tok)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("refresh(%q) status = %d, want 401", tok, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("401 body = %q, want empty", w.Body.String())
		}
	}
}

func TestRefresh_RejectsAccessTokenShapedSubject(t *testing.T) {
	f := newFixture(t)

	// Signed and unexpired, but the subject has no nonce segment.
	tok, err := f.codec.Issue("google:123", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := f.post(t, "/api/auth/refresh", tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_RejectsUnknownToken(t *testing.T) {
	f := newFixture(t)
	f.loggedInUser(t)

	// Codec-valid token that was never persisted server-side.
	tok, err := f.codec.Issue("google:123:deadbeef", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := f.post(t, "/api/auth/refresh", tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_StaleStoreExpiryClearsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.store.FindOrCreate(ctx, "google", "123", "a@b.com")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}

	// Codec-valid token whose store-side expiry is already past.
	tok, err := f.codec.Issue("google:123:nonce", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := f.store.StoreRefreshToken(ctx, u.ID, tok, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("store: %v", err)
	}

	w := f.post(t, "/api/auth/refresh", tok)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	// Defense in depth: the stale token is gone from the store.
	if _, err := f.store.FindByRefreshToken(ctx, tok); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("stale token lookup = %v, want ErrNotFound", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, pair := f.loggedInUser(t)

	w := f.post(t, "/api/auth/logout", pair.RefreshToken)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", w.Code)
	}
	if _, err := f.store.FindByRefreshToken(ctx, pair.RefreshToken); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("token after logout = %v, want ErrNotFound", err)
	}

	// Logging out again, or with a token never issued, is still 200.
	w = f.post(t, "/api/auth/logout", pair.RefreshToken)
	if w.Code != http.StatusOK {
		t.Errorf("repeat logout status = %d, want 200", w.Code)
	}
	w = f.post(t, "/api/auth/logout", "never-issued")
	if w.Code != http.StatusOK {
		t.Errorf("unknown-token logout status = %d, want 200", w.Code)
	}

	// The account itself is untouched.
	if _, err := f.store.FindByProviderAndID(ctx, u.Provider, u.ProviderID); err != nil {
		t.Errorf("user lookup after logout: %v", err)
	}
}
