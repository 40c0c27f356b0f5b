package app

import (
	"context"
	"net/http"

	"hatake-api/internal/auth/credentials"
	"hatake-api/internal/auth/handler"
	"hatake-api/internal/auth/linker"
	"hatake-api/internal/auth/provider"
	"hatake-api/internal/auth/provider/google"
	"hatake-api/internal/auth/resolver"
	"hatake-api/internal/auth/token"
	"hatake-api/internal/collection"
	"hatake-api/internal/config"
	"hatake-api/internal/friends"
	"hatake-api/internal/invite"
	"hatake-api/internal/logger"
	"hatake-api/internal/marketplace"
	"hatake-api/internal/middleware"
	"hatake-api/internal/profile"
	"hatake-api/internal/session"
	"hatake-api/internal/users"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

const meterName = "hatake-api"

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, error) {

	// Dependencies

	var sessionStore session.Store = session.NewPostgresStore(infra.DB)
	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client)
	}

	userRepo := users.NewPostgresRepository(infra.DB)

	tokens, err := token.NewManager(token.Config{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		return nil, err
	}

	metrics, err := resolver.NewMetrics(otel.GetMeterProvider().Meter(meterName))
	if err != nil {
		return nil, err
	}

	sessionResolver := resolver.New(
		resolver.TokenLookup{Tokens: tokens, Users: userRepo},
		resolver.SessionLookup{Sessions: sessionStore, Users: userRepo},
		resolver.WithMetrics(metrics),
	)
	authMiddleware := middleware.NewAuthMiddleware(sessionResolver)

	var providers []provider.OAuthProvider
	if cfg.OAuthEnabled() {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, googleProvider)
	}
	registry := provider.NewRegistry(providers...)
	logger.Info("oauth providers", map[string]any{"providers": registry.Names()})

	authHandler := handler.NewHandler(handler.Deps{
		Providers:    registry,
		Sessions:     sessionStore,
		Credentials:  credentials.NewService(infra.DB),
		Linker:       linker.New(infra.DB),
		Tokens:       tokens,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	})

	cors, err := middleware.CORS(cfg.CORSAllowedOrigins)
	if err != nil {
		return nil, err
	}

	// Router

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), cors)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api")
	protected := router.Group("/api")
	protected.Use(middleware.GinRequireAuth(authMiddleware))

	authHandler.RegisterRoutes(router, public, protected)
	friends.NewHandler(friends.NewPostgresRepository(infra.DB)).RegisterRoutes(protected)
	invite.NewHandler(invite.NewPostgresRepository(infra.DB)).RegisterRoutes(public)
	marketplace.NewHandler(marketplace.NewPostgresRepository(infra.DB)).RegisterRoutes(public, protected)
	collection.NewHandler(collection.NewPostgresRepository(infra.DB)).RegisterRoutes(protected)
	profile.NewHandler(profile.NewPostgresRepository(infra.DB)).RegisterRoutes(protected)

	for _, route := range router.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}

	return router, nil
}
