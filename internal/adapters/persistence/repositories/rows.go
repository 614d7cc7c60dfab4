package repositories

import (
	"context"

	"gorm.io/gorm"
)

// requireRow turns an update that touched no rows into gorm.ErrRecordNotFound,
// unless the row exists and simply already held the new values.
func requireRow(ctx context.Context, db *gorm.DB, model interface{}, id uint, result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
