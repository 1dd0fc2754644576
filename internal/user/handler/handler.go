package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VanillaLatte1/project-ant/internal/logger"
	"github.com/VanillaLatte1/project-ant/internal/middleware"
	"github.com/VanillaLatte1/project-ant/internal/user"
)

type Handler struct {
	users user.Store
}

func NewHandler(users user.Store) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the profile endpoints on an authenticated
// route group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.Me)
	rg.PUT("/users/me", h.UpdateMe)
	rg.DELETE("/users/me", h.DeleteMe)
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     *string   `json:"email"`
	Name      *string   `json:"name"`
	ImageURL  *string   `json:"imageUrl"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}

type updateRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	ImageURL string `json:"imageUrl" binding:"omitempty,max=500"`
}

func (h *Handler) Me(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, toResponse(p.User))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), p.User.ID, req.Name, req.ImageURL)
	if err != nil {
		logger.Error("profile update failed", map[string]any{
			"user_id": p.User.ID.String(),
			"error":   err.Error(),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated", map[string]any{
		"user_id": updated.ID.String(),
	})

	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *Handler) DeleteMe(c *gin.Context) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := h.users.Delete(c.Request.Context(), p.User.ID); err != nil {
		logger.Error("account deletion failed", map[string]any{
			"user_id": p.User.ID.String(),
			"error":   err.Error(),
		})
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	logger.Info("account deleted", map[string]any{
		"user_id": p.User.ID.String(),
	})

	c.Status(http.StatusNoContent)
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     nullable(u.Email.String, u.Email.Valid),
		Name:      nullable(u.Name.String, u.Name.Valid),
		ImageURL:  nullable(u.ImageURL.String, u.ImageURL.Valid),
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}

func nullable(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
