package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// handlerはStatusとMessageをそのままレスポンスにする
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	errUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	errNotFound     = NewHTTPError(http.StatusNotFound, "not found")
)

// repo/DBのエラーをHTTPErrorへ。500だけログに残す
func dbError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return errNotFound
	case errors.Is(err, repo.ErrConflict):
		return NewHTTPError(http.StatusConflict, "conflict, retry")
	case errors.Is(err, repo.ErrDuplicate):
		return NewHTTPError(http.StatusConflict, "duplicate")
	}
	logger.FromContext(ctx).Error("db error", zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// WithinTxの戻り値用。fn内で作ったHTTPErrorはそのまま
func txError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(ctx, err)
}

func isRepoNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
