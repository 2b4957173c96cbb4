package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// ErrorPresenter formats errors the same way the REST API does
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) && gqlErr.Err == nil {
		// parse and validation errors carry their own locations and codes
		return gqlErr
	}
	if gqlErr == nil {
		gqlErr = &gqlerror.Error{
			Message: err.Error(),
		}
	}

	apiErr := apierrors.FromError(err, "Internal server error")
	switch apiErr.Code {
	case apierrors.ErrCodeInternalError, apierrors.ErrCodeServiceError, apierrors.ErrCodeDatabaseError:
		return handleInternalError(ctx, gqlErr, err)
	case apierrors.ErrCodeNotFound:
		return &gqlerror.Error{
			Message: "Not found",
			Path:    gqlErr.Path,
			Extensions: map[string]interface{}{
				"code":    string(apierrors.ErrCodeNotFound),
				"message": apiErr.Message,
			},
		}
	}

	gqlErr.Message = apiErr.Message
	gqlErr.Extensions = map[string]interface{}{
		"code":    string(apiErr.Code),
		"message": apiErr.Message,
	}
	if apiErr.Details != "" {
		gqlErr.Extensions["details"] = apiErr.Details
	}
	return gqlErr
}

// handleInternalError logs the cause and hides it from the client
func handleInternalError(ctx context.Context, gqlErr *gqlerror.Error, err error) *gqlerror.Error {
	logger.ErrorCtx(ctx, err, zap.String("error", "Unhandled GraphQL error"))
	return &gqlerror.Error{
		Message: "Internal server error",
		Path:    gqlErr.Path,
		Extensions: map[string]interface{}{
			"code":    string(apierrors.ErrCodeInternalError),
			"message": "Internal server error",
		},
	}
}

// RecoverFunc handles panics in resolvers
func RecoverFunc(ctx context.Context, err interface{}) error {
	logger.ErrorCtx(ctx, fmt.Errorf("panic: %v", err), zap.Any("panic", err))
	return apierrors.NewInternalError("Internal server error")
}
