package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appErrors "cargo-transport/pkg/errors"
)

// guardedUpdate is the row-level compare-and-swap every mutation goes
// through. The version comparison happens inside the UPDATE's WHERE clause,
// so the store itself decides the winner between concurrent writers: the
// losing write matches zero rows. A zero-row result is disambiguated into
// "row gone" (notFoundErr) versus "row moved on" (ErrVersionConflict).
func guardedUpdate(db *gorm.DB, model interface{}, id uuid.UUID, expectedVersion int64, updates map[string]interface{}, notFoundErr error) error {
	updates["version"] = gorm.Expr("version + 1")

	result := db.Model(model).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("guarded update failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("guarded update existence check failed: %w", err)
		}
		if count == 0 {
			return notFoundErr
		}
		return appErrors.ErrVersionConflict
	}

	return nil
}
