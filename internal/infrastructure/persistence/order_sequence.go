package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderNumberGenerator issues per-firm order sequence values from the
// order_sequences table. Each call is a single upsert, so concurrent callers
// never receive the same value.
type GormOrderNumberGenerator struct {
	db *gorm.DB
}

// NewGormOrderNumberGenerator creates a new GormOrderNumberGenerator
func NewGormOrderNumberGenerator(db *gorm.DB) *GormOrderNumberGenerator {
	return &GormOrderNumberGenerator{db: db}
}

var _ procurement.OrderNumberGenerator = (*GormOrderNumberGenerator)(nil)

// Next returns the firm's next sequence value, starting at 1
func (g *GormOrderNumberGenerator) Next(ctx context.Context, firmID uuid.UUID) (int64, error) {
	row := models.OrderSequenceModel{
		FirmID:    firmID,
		LastValue: 1,
		UpdatedAt: time.Now().UTC(),
	}
	err := g.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "firm_id"}},
				DoUpdates: clause.Set{
					{Column: clause.Column{Name: "last_value"}, Value: gorm.Expr("order_sequences.last_value + 1")},
					{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
				},
			},
			clause.Returning{Columns: []clause.Column{{Name: "last_value"}}},
		).
		Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	if row.LastValue <= 0 {
		return 0, fmt.Errorf("next order sequence: no value returned for firm %s", firmID)
	}
	return row.LastValue, nil
}

// LastSequence returns the highest sequence stored on the firm's orders. The
// Redis generator uses it as a floor when its counter is missing.
func (g *GormOrderNumberGenerator) LastSequence(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var last int64
	err := g.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Scopes(FirmScope(firmID)).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	return last, err
}
