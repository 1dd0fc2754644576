package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "github.com/VanillaLatte1/project-ant/internal/auth/handler"
	"github.com/VanillaLatte1/project-ant/internal/auth/provider"
	"github.com/VanillaLatte1/project-ant/internal/auth/provider/google"
	"github.com/VanillaLatte1/project-ant/internal/auth/provider/kakao"
	"github.com/VanillaLatte1/project-ant/internal/auth/provider/naver"
	"github.com/VanillaLatte1/project-ant/internal/auth/state"
	"github.com/VanillaLatte1/project-ant/internal/config"
	"github.com/VanillaLatte1/project-ant/internal/middleware"
	"github.com/VanillaLatte1/project-ant/internal/token"
	"github.com/VanillaLatte1/project-ant/internal/user"
	userhandler "github.com/VanillaLatte1/project-ant/internal/user/handler"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPostgresStore(infra.DB)
	stateStore := state.NewRedisStore(infra.Redis.Client)

	codec, err := token.NewCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, nil, err
	}

	issuer := token.NewIssuer(codec, userStore, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	kakaoProvider, err := kakao.New(
		cfg.KakaoClientID,
		cfg.KakaoClientSecret,
		cfg.KakaoRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	naverProvider, err := naver.New(
		cfg.NaverClientID,
		cfg.NaverClientSecret,
		cfg.NaverRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		kakaoProvider,
		naverProvider,
	)

	authHandler := authhandler.NewHandler(
		registry,
		stateStore,
		userStore,
		codec,
		issuer,
		cfg.FrontendRedirectURL,
	)

	userHandler := userhandler.NewHandler(userStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}))

	// Authentication runs on every request; route policy below
	// decides which routes demand an identity.
	router.Use(middleware.Authenticate(codec, userStore))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "project-ant"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth())

	userHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
