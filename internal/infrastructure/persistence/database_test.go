package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmerp/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewDatabaseFromDialector(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing()
	database, err := NewDatabaseFromDialector(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), nil)
	require.NoError(t, err)

	assert.True(t, database.DB.Config.TranslateError)
	assert.True(t, database.DB.Config.SkipDefaultTransaction)
	assert.Equal(t, "UTC", database.DB.Config.NowFunc().Location().String())

	mock.ExpectPing()
	assert.NoError(t, database.Ping(context.Background()))

	stats, err := database.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)

	mock.ExpectClose()
	assert.NoError(t, database.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingPlugin struct{ registered bool }

func (p *recordingPlugin) Register(_ *gorm.DB) error {
	p.registered = true
	return nil
}

func TestDatabase_Use(t *testing.T) {
	database := &Database{DB: newTestDB(t)}
	plugin := &recordingPlugin{}
	require.NoError(t, database.Use(plugin))
	assert.True(t, plugin.registered)
}

func TestFirmScope(t *testing.T) {
	db := newTestDB(t)
	firmID := uuid.New()

	stmt := db.Session(&gorm.Session{DryRun: true}).
		Scopes(FirmScope(firmID)).
		Find(&[]models.ExpenseModel{}).Statement

	assert.Contains(t, stmt.SQL.String(), "firm_id = ?")
	require.Len(t, stmt.Vars, 1)
	assert.Equal(t, firmID, stmt.Vars[0])
}
