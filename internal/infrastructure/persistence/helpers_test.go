package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/farmerp/backend/internal/domain/finance"
	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/farmerp/backend/internal/domain/shared/valueobject"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory sqlite database with the order schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := NewDatabaseFromDialector(sqlite.Open(dsn), nil)
	require.NoError(t, err)

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.DB.AutoMigrate(
		&models.PurchaseOrderModel{},
		&models.PurchaseOrderItemModel{},
		&models.ExpenseModel{},
		&models.OrderSequenceModel{},
		&models.FirmSettingsModel{},
	))
	return database.DB
}

var testOrderDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

func newOrder(t *testing.T, firmID uuid.UUID, seq int64, supplier string, prices ...string) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(firmID, procurement.FormatOrderNumber("PO", seq), seq,
		procurement.FiveStateScheme, valueobject.EUR, procurement.OrderHeader{
			SupplierName: supplier,
			Reference:    "Spring seed",
			Currency:     valueobject.EUR,
			OrderDate:    testOrderDate,
			PaymentTerms: procurement.TermsSplitThirds,
		})
	require.NoError(t, err)

	inputs := make([]procurement.ItemInput, len(prices))
	for i, p := range prices {
		inputs[i] = procurement.ItemInput{
			Description: fmt.Sprintf("Seed lot %d", i+1),
			Quantity:    decimal.NewFromInt(2),
			Unit:        "bag",
			UnitPrice:   decimal.RequireFromString(p),
			TaxRate:     decimal.NewFromInt(10),
		}
	}
	require.NoError(t, order.ReplaceItems(inputs))
	order.ClearDomainEvents()
	return order
}

func newExpense(t *testing.T, order *procurement.PurchaseOrder, number int, amount string) *finance.Expense {
	t.Helper()
	e, err := finance.NewAutoGeneratedExpense(finance.ExpenseSource{
		FirmID:          order.FirmID,
		PurchaseOrderID: order.ID,
		SupplierName:    order.SupplierName,
		Reference:       order.OrderNumber,
		Currency:        order.Currency,
	}, finance.Installment{
		Number:     number,
		Percentage: decimal.RequireFromString("33.33"),
		DueDate:    testOrderDate.AddDate(0, 0, 30*number),
		Amount:     decimal.RequireFromString(amount),
	}, finance.ExpenseStatusPending)
	require.NoError(t, err)
	return e
}
