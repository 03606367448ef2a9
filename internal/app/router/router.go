// Package router builds the gin engine.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	accounthandler "account_backend/internal/feature/account/transport/handler"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/http/handler"
	"account_backend/internal/platform/http/middleware"
	"account_backend/internal/platform/metrics"
)

// Options configures NewRouter.
type Options struct {
	// CORSOrigins lists the allowed browser origins. Credentials are allowed, so "*" is never used.
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter mounts /graphql, /healthz and /metrics.
func NewRouter(account *accounthandler.GraphQLHandler, health *handler.HealthHandler, tokens jwtmw.TokenParser, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(metrics.Middleware())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// セッションCookieは任意。無効なトークンは匿名として扱う
	gql := r.Group("/graphql")
	gql.Use(jwtmw.SessionFromCookie(tokens))
	{
		gql.POST("", account.Serve)
		// GETは405とAllow: POSTを返す
		gql.GET("", account.Serve)
	}

	return r
}
