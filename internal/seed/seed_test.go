package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
categories:
  - name: Visas
    services:
      - name: Tourist visa
        price: "49.90"
        description: Up to 90 days
      - name: Consultation
  - name: Residency
`

func TestParse(t *testing.T) {
	seeds, err := Parse([]byte(fixture))
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "Visas", seeds[0].Name)
	require.Len(t, seeds[0].Services, 2)
	assert.True(t, seeds[0].Services[0].Price.Equal(decimal.RequireFromString("49.9")))
	assert.True(t, seeds[0].Services[1].Price.IsZero())
	assert.Empty(t, seeds[1].Services)
}

func TestParseRejectsBadInput(t *testing.T) {
	for name, doc := range map[string]string{
		"empty category": "categories:\n  - name: ' '\n",
		"bad price":      "categories:\n  - name: A\n    services:\n      - name: S\n        price: abc\n",
		"negative price": "categories:\n  - name: A\n    services:\n      - name: S\n        price: '-1'\n",
		"not yaml":       "categories: [",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestCatalogSeederDisabledWithoutPath(t *testing.T) {
	require.NoError(t, CatalogSeeder("").Seed(context.Background(), nil))
}

func TestCatalogSeederSkipsPopulatedCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM category`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	require.NoError(t, CatalogSeeder(path).Seed(context.Background(), sqlx.NewDb(raw, "postgres")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
