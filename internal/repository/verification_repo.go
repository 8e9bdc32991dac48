package repository

import (
	"context"
	"time"

	"github.com/cinematalkiez/blackhole/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationRepository handles database operations for device verification records
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// FindByDeviceID finds the record for a device id
func (r *VerificationRepository) FindByDeviceID(ctx context.Context, deviceID string) (*model.DeviceVerification, error) {
	var rec model.DeviceVerification
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Register creates an unverified record. An existing record is left untouched
// so a verified device is never downgraded.
func (r *VerificationRepository) Register(ctx context.Context, deviceID string) error {
	rec := model.DeviceVerification{DeviceID: deviceID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

// MarkVerified upserts the record as verified
func (r *VerificationRepository) MarkVerified(ctx context.Context, deviceID string, at time.Time) error {
	rec := model.DeviceVerification{
		DeviceID:      deviceID,
		TokenVerified: true,
		VerifiedAt:    &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token_verified": true,
			"verified_at":    at,
			"updated_at":     at,
		}),
	}).Create(&rec).Error
}

// CleanupStale removes unverified records created before cutoff (housekeeping)
func (r *VerificationRepository) CleanupStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("token_verified = ? AND created_at < ?", false, cutoff).
		Delete(&model.DeviceVerification{})
	return res.RowsAffected, res.Error
}

// CountVerified counts verified devices
func (r *VerificationRepository) CountVerified(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DeviceVerification{}).
		Where("token_verified = ?", true).
		Count(&count).Error
	return count, err
}
