package di

import (
	"go.uber.org/zap"

	"account_backend/internal/app/config"
	"account_backend/internal/feature/account/credential"
	gql "account_backend/internal/feature/account/transport/graphql"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	"account_backend/internal/feature/account/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// Account bundles what the router needs from the account feature.
type Account struct {
	Handler *accounthandler.GraphQLHandler
	Tokens  *jwtmw.Generator
}

// NewAccount wires hasher, token generator, usecase, schema and handler over users.
func NewAccount(cfg *config.Config, users usecase.UserRepository, logger *zap.Logger) *Account {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; logins will fail until a secret is configured")
	}

	tokens := jwtmw.NewGenerator(cfg.JWTSecret, cfg.TokenTTL)
	uc := usecase.NewAccountUsecase(users, credential.NewHasher(cfg.BcryptCost), tokens, logger)

	schema := gql.NewSchema(uc, gql.SchemaOptions{
		DisableIntrospection: cfg.IsProduction(),
		ExposePasswordHash:   cfg.ExposePasswordHash,
	})

	return &Account{
		Handler: accounthandler.NewGraphQLHandler(schema, cfg.CookieOptions(), logger),
		Tokens:  tokens,
	}
}
