package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/logger"
	"github.com/VanillaLatte1/project-ant/internal/token"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// Refresh rotates a refresh token for a new access/refresh pair.
// Every failure is a bare 401: callers must not learn which check
// rejected them.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// 1. Codec-level check: signature and token-embedded expiry.
	subject, err := h.codec.Verify(req.RefreshToken)
	if err != nil {
		logger.Warn("refresh token rejected", map[string]any{
			"error": err.Error(),
		})
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// 2. The subject must carry a trailing nonce segment.
	if _, ok := token.StripNonce(subject); !ok {
		logger.Warn("refresh token subject malformed", nil)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// 3. The presented token must be the one on file. A token that
	// verifies but misses here was rotated away already: replay.
	u, err := h.users.FindByRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if isNotFound(err) {
			logger.Warn("refresh token stale", nil)
		} else {
			logger.Error("refresh token lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// 4. Store-side expiry, independent of the codec check above.
	// A stale entry is cleared so it cannot be presented again.
	if !u.RefreshTokenExpiry.Valid || u.RefreshTokenExpiry.Time.Before(h.now()) {
		logger.Warn("stored refresh token expired", map[string]any{
			"user_id": u.ID.String(),
		})
		if err := h.users.ClearRefreshToken(c.Request.Context(), u.ID); err != nil {
			logger.Error("failed to clear expired refresh token", map[string]any{
				"user_id": u.ID.String(),
				"error":   err.Error(),
			})
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// 5. Rotate: the pair issuance overwrites the stored token, so
	// the just-presented token cannot refresh twice.
	pair, err := h.issuer.IssuePair(c.Request.Context(), u)
	if err != nil {
		logger.Error("token rotation failed", map[string]any{
			"user_id": u.ID.String(),
			"error":   err.Error(),
		})
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	logger.Info("tokens rotated", map[string]any{
		"user_id": u.ID.String(),
	})

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

// Logout revokes the stored refresh token. It is idempotent and always
// answers 200, so callers cannot probe which tokens exist.
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusOK)
		return
	}

	u, err := h.users.FindByRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if !isNotFound(err) {
			logger.Error("logout lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		c.Status(http.StatusOK)
		return
	}

	if err := h.users.ClearRefreshToken(c.Request.Context(), u.ID); err != nil {
		logger.Error("failed to clear refresh token", map[string]any{
			"user_id": u.ID.String(),
			"error":   err.Error(),
		})
	} else {
		logger.Info("logout complete", map[string]any{
			"user_id": u.ID.String(),
		})
	}

	c.Status(http.StatusOK)
}
