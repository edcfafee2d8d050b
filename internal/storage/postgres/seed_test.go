package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestSeedCatalogSkipsNonEmpty(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(qCountCategories).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	n, err := st.SeedCatalog(context.Background(), []CategorySeed{{Name: "Visas"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedCatalogInsertsCategoriesAndServices(t *testing.T) {
	st, mock := newMockStore(t)
	price := decimal.RequireFromString("5.00")
	mock.ExpectBegin()
	mock.ExpectQuery(qCountCategories).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(qInsertCategory).WithArgs("Visas").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(qInsertService).WithArgs("A", sqlmock.AnyArg(), "desc", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	n, err := st.SeedCatalog(context.Background(), []CategorySeed{{
		Name:     "Visas",
		Services: []domain.Service{{Name: "A", Price: price, Description: "desc"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPingMapsFailure(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectPing().WillReturnError(assert.AnError)

	assert.ErrorIs(t, st.Ping(context.Background()), domain.ErrStoreUnavailable)
}
