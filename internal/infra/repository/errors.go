package repository

import (
	"errors"

	"storefront/internal/infra/db"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

func wrap(err error) error {
	return db.Translate(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// First/Take用
func notFoundOr(err error) error {
	if isNotFound(err) {
		return repo.ErrNotFound
	}
	return wrap(err)
}
