package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/auth/provider"
	"github.com/VanillaLatte1/project-ant/internal/auth/state"
	"github.com/VanillaLatte1/project-ant/internal/identity"
	"github.com/VanillaLatte1/project-ant/internal/logger"
	"github.com/VanillaLatte1/project-ant/internal/token"
	"github.com/VanillaLatte1/project-ant/internal/user"
)

type Handler struct {
	providers   *provider.Registry
	states      state.Store
	users       user.Store
	codec       *token.Codec
	issuer      *token.Issuer
	frontendURL string
	now         func() time.Time
}

func NewHandler(
	registry *provider.Registry,
	states state.Store,
	users user.Store,
	codec *token.Codec,
	issuer *token.Issuer,
	frontendURL string,
) *Handler {
	return &Handler{
		providers:   registry,
		states:      states,
		users:       users,
		codec:       codec,
		issuer:      issuer,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth2/authorization/:provider", h.login)
	r.GET("/login/oauth2/code/:provider", h.callback)
	r.POST("/api/auth/refresh", h.Refresh)
	r.POST("/api/auth/logout", h.Logout)
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	st, verifier, challenge, err := state.NewAttempt()
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if err := h.states.Save(c.Request.Context(), st, verifier); err != nil {
		logger.Error("failed to persist login state", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, p.AuthCodeURL(st, challenge))
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// Provider-side denial (user cancelled consent, bad scope, ...):
	// send the browser back to the front end with the error code.
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.redirectError(c, errParam)
		return
	}

	verifier, err := h.states.Consume(c.Request.Context(), c.Query("state"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	attrs, err := p.ExchangeCode(c.Request.Context(), code, verifier)
	if err != nil {
		logger.Error("oauth code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	id, err := identity.Normalize(providerName, attrs)
	if err != nil {
		logger.Error("identity normalization failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	u, err := h.users.FindOrCreate(c.Request.Context(), id.Provider, id.ProviderID, id.Email)
	if err == nil && (id.Name != "" || id.ImageURL != "") {
		u, err = h.users.UpdateProfile(c.Request.Context(), u.ID, id.Name, id.ImageURL)
	}
	if err != nil {
		logger.Error("failed to upsert user", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	pair, err := h.issuer.IssuePair(c.Request.Context(), u)
	if err != nil {
		logger.Error("failed to issue token pair", map[string]any{
			"user_id": u.ID.String(),
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to issue tokens",
		})
		return
	}

	logger.Info("oauth login success", map[string]any{
		"provider":    id.Provider,
		"provider_id": id.ProviderID,
		"user_id":     u.ID.String(),
	})

	c.Redirect(http.StatusFound, h.successURL(pair))
}

func (h *Handler) successURL(pair token.Pair) string {
	q := url.Values{}
	q.Set("accessToken", pair.AccessToken)
	q.Set("refreshToken", pair.RefreshToken)
	return h.frontendURL + "?" + q.Encode()
}

func (h *Handler) redirectError(c *gin.Context, code string) {
	q := url.Values{}
	q.Set("error", code)
	c.Redirect(http.StatusFound, h.frontendURL+"?"+q.Encode())
}

func isNotFound(err error) bool {
	return errors.Is(err, user.ErrNotFound)
}
