package persistence

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormOrderNumberGenerator_PerFirmSequences(t *testing.T) {
	ctx := context.Background()
	gen := NewGormOrderNumberGenerator(newTestDB(t))
	firmA, firmB := uuid.New(), uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := gen.Next(ctx, firmA)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := gen.Next(ctx, firmB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestGormOrderNumberGenerator_ConcurrentCallersNeverCollide(t *testing.T) {
	ctx := context.Background()
	gen := NewGormOrderNumberGenerator(newTestDB(t))
	firmID := uuid.New()

	const callers = 20
	values := make(chan int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := gen.Next(ctx, firmID)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, callers)
	for v := range values {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)
	for v := int64(1); v <= callers; v++ {
		assert.True(t, seen[v], "value %d missing", v)
	}
}

func newMockSequenceDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestGormOrderNumberGenerator_PostgresUpsert(t *testing.T) {
	db, mock, mockDB := newMockSequenceDB(t)
	defer mockDB.Close()
	firmID := uuid.New()

	mock.ExpectQuery(`INSERT INTO "order_sequences" .* ON CONFLICT \("firm_id"\) DO UPDATE SET "last_value"=order_sequences.last_value \+ 1,"updated_at"=excluded.updated_at RETURNING "last_value"`).
		WithArgs(firmID, int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

	got, err := NewGormOrderNumberGenerator(db).Next(context.Background(), firmID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderNumberGenerator_PropagatesErrors(t *testing.T) {
	db, mock, mockDB := newMockSequenceDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`INSERT INTO "order_sequences"`).WillReturnError(sql.ErrConnDone)

	_, err := NewGormOrderNumberGenerator(db).Next(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestGormOrderNumberGenerator_LastSequence(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	gen := NewGormOrderNumberGenerator(db)
	repo := NewGormPurchaseOrderRepository(db)
	firmID := uuid.New()

	last, err := gen.LastSequence(ctx, firmID)
	require.NoError(t, err)
	assert.Zero(t, last)

	require.NoError(t, repo.Create(ctx, newOrder(t, firmID, 4, "Green Valley Feeds", "1.00")))
	require.NoError(t, repo.Create(ctx, newOrder(t, firmID, 9, "Green Valley Feeds", "1.00")))
	require.NoError(t, repo.Create(ctx, newOrder(t, uuid.New(), 50, "Elsewhere", "1.00")))

	last, err = gen.LastSequence(ctx, firmID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), last)
}
