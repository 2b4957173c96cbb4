package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/api/middleware"
	"github.com/feral-file/ff-collection-indexer/internal/api/shared/executor"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// Handler defines the interface for GraphQL API handlers
type Handler interface {
	// HandleGraphQL handles GraphQL queries and mutations over POST and GET
	HandleGraphQL(c *gin.Context)
}

type gqlHandler struct {
	server     *handler.Server
	authConfig middleware.AuthConfig
}

// NewHandler creates a GraphQL handler backed by the shared executor
func NewHandler(exec executor.Executor, authCfg middleware.AuthConfig) Handler {
	schema := NewExecutableSchema(NewResolver(exec))

	srv := handler.NewDefaultServer(schema)
	srv.SetErrorPresenter(ErrorPresenter)
	srv.SetRecoverFunc(RecoverFunc)

	h := &gqlHandler{
		server:     srv,
		authConfig: authCfg,
	}

	// every mutation changes indexing state, so all of them require authentication
	srv.AroundOperations(h.authMiddleware)

	return h
}

// authMiddleware authenticates mutations using the shared authentication logic
func (h *gqlHandler) authMiddleware(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
	opctx := graphql.GetOperationContext(ctx)
	if opctx.Operation == nil || opctx.Operation.Operation != ast.Mutation {
		return next(ctx)
	}

	mutationName := ""
	for _, selection := range opctx.Operation.SelectionSet {
		if field, ok := selection.(*ast.Field); ok {
			mutationName = field.Name
			break
		}
	}

	authHeader := ""
	if opctx.Headers != nil {
		authHeader = opctx.Headers.Get("Authorization")
	}

	result := middleware.Authenticate(authHeader, h.authConfig)
	if !result.Success {
		logger.WarnCtx(ctx, "GraphQL mutation authentication failed",
			zap.Error(result.Error),
			zap.String("operation", mutationName),
		)
		return func(ctx context.Context) *graphql.Response {
			return graphql.ErrorResponse(ctx, "Authentication required for this mutation")
		}
	}

	ctx = context.WithValue(ctx, middleware.AUTH_TYPE_KEY, result.AuthType)
	if result.Claims != nil {
		ctx = context.WithValue(ctx, middleware.JWT_CLAIMS_KEY, result.Claims)
	}
	if result.AuthSubject != "" {
		ctx = context.WithValue(ctx, middleware.AUTH_SUBJECT_KEY, result.AuthSubject)
	}

	logger.DebugCtx(ctx, "GraphQL mutation authentication successful",
		zap.String("operation", mutationName),
		zap.String("auth_type", result.AuthType),
	)

	return next(ctx)
}

// HandleGraphQL processes GraphQL queries and mutations
func (h *gqlHandler) HandleGraphQL(c *gin.Context) {
	h.server.ServeHTTP(c.Writer, c.Request)
}

// SetupRoutes configures GraphQL API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	router.POST("/graphql", handler.HandleGraphQL)
	router.GET("/graphql", handler.HandleGraphQL)
}
