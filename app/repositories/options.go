package repositories

import (
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"gorm.io/gorm"
)

// ReadOptions makes every read's shape explicit at the call site.
type ReadOptions struct {
	// IncludeGuides preloads a tour's guide users.
	IncludeGuides bool
	// IncludeReviews preloads a tour's reviews with their authors.
	IncludeReviews bool
	// IncludeInactive lifts the soft-delete filter on users.
	IncludeInactive bool
}

// activeUsers is the default soft-delete filter for any query that reads users.
func activeUsers(opts ReadOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if opts.IncludeInactive {
			return db
		}
		return db.Where("active = ?", true)
	}
}

// translateError turns gorm sentinel errors into the typed errors the responder understands.
func translateError(err error, resource, id, uniqueField string) error {
	if err == nil || apperrors.IsOperational(err) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperrors.DuplicateKeyError{Field: uniqueField}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperrors.ReferenceError{Resource: resource}
	default:
		return fmt.Errorf("%s %s: %w", resource, id, err)
	}
}
