package db

import (
	"errors"
	"fmt"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
	ErrorClassUniqueViolation
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505":
			return ErrorClassUniqueViolation
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorClassUniqueViolation
	}
	return ErrorClassPermanent
}

// Translateはドライバのエラーをrepositoryの番兵エラーで包む（自動リトライはしない）
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrConflict) || errors.Is(err, repo.ErrDuplicate) {
		return err
	}
	switch ClassifyError(err) {
	case ErrorClassSerialization, ErrorClassDeadlock, ErrorClassTransient:
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	case ErrorClassUniqueViolation:
		return fmt.Errorf("%w: %v", repo.ErrDuplicate, err)
	}
	return err
}
