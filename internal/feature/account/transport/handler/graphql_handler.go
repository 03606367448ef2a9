// Package handler はaccountフィーチャーのGraphQLエンドポイントを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"account_backend/internal/feature/account/transport/http/dto"
	"account_backend/internal/platform/session"
)

// Executor はGraphQLクエリを実行します。*graphql.Schema が満たします。
type Executor interface {
	Exec(ctx context.Context, queryString string, operationName string, variables map[string]interface{}) *graphqlgo.Response
}

// GraphQLHandler は/graphqlへのリクエストを処理します。
type GraphQLHandler struct {
	schema Executor
	cookie session.CookieOptions
	logger *zap.Logger
}

// NewGraphQLHandler はGraphQLHandlerを生成します。loggerがnilの場合はログを出力しません。
func NewGraphQLHandler(schema Executor, cookie session.CookieOptions, logger *zap.Logger) *GraphQLHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLHandler{schema: schema, cookie: cookie, logger: logger.Named("graphql")}
}

// Serve はPOSTのJSONボディからリクエストを読み取り実行します。
// ミューテーションはパスワードやCookieを扱うため、POST以外のメソッドは405で拒否します。
//
// エンドポイント例:
// POST /graphql {"query": "...", "operationName": "...", "variables": {...}}
func (h *GraphQLHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponse(errMethodNotAllowed.Error()))
		return
	}

	var req dto.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidBody.Error()))
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("query is required"))
		return
	}

	// Cookieの書き込み先をリゾルバーに渡す
	ctx := session.WithSession(c.Request.Context(), session.NewCookieSession(c, h.cookie))

	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) > 0 {
		h.logger.Debug("graphql request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(resp.Errors)),
		)
	}

	c.JSON(http.StatusOK, resp)
}
