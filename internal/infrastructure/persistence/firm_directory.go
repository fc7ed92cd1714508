package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFirmDirectory reads firm settings from firm_settings. Firms without a
// row book in the configured fallback currency.
type GormFirmDirectory struct {
	db       *gorm.DB
	fallback valueobject.Currency
}

// NewGormFirmDirectory creates a new GormFirmDirectory
func NewGormFirmDirectory(db *gorm.DB, fallback valueobject.Currency) *GormFirmDirectory {
	if fallback == "" {
		fallback = valueobject.DefaultCurrency
	}
	return &GormFirmDirectory{db: db, fallback: fallback}
}

var _ procurement.FirmDirectory = (*GormFirmDirectory)(nil)

// BaseCurrency returns the currency the firm books in
func (d *GormFirmDirectory) BaseCurrency(ctx context.Context, firmID uuid.UUID) (valueobject.Currency, error) {
	var row models.FirmSettingsModel
	err := d.db.WithContext(ctx).Where("firm_id = ?", firmID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.fallback, nil
	}
	if err != nil {
		return "", err
	}
	return valueobject.ParseCurrency(row.BaseCurrency)
}

// SetBaseCurrency stores the firm's base currency
func (d *GormFirmDirectory) SetBaseCurrency(ctx context.Context, firmID uuid.UUID, currency valueobject.Currency) error {
	parsed, err := valueobject.ParseCurrency(string(currency))
	if err != nil {
		return err
	}
	row := models.FirmSettingsModel{FirmID: firmID, BaseCurrency: string(parsed), UpdatedAt: time.Now().UTC()}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "firm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"base_currency", "updated_at"}),
	}).Create(&row).Error
}
