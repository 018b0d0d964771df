// Package repository provides the data access layer for users, posts, comments and likes.
package repository

import (
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// storeError passes application errors through and hides everything else
// behind an internal error so driver diagnostics never reach clients.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storeError(err)
}
