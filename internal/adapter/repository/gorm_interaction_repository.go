package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
)

type gormInteractionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// Record upserts the (user, property, type) row, refreshing its timestamp.
func (r *gormInteractionRepository) Record(ctx context.Context, userID, propertyID, interactionType string) error {
	interaction := &entity.Interaction{
		UserID:     userID,
		PropertyID: propertyID,
		Type:       interactionType,
		Timestamp:  r.now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp"}),
	}).Create(interaction).Error
	if err != nil {
		return errors.Internal("Failed to record interaction", err)
	}
	return nil
}
