package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/knawat/mp-backend/internal/domain/shared"
)

// newMockStoreRepository creates a GormStoreRepository with a mocked SQL connection
func newMockStoreRepository(t *testing.T) (*GormStoreRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStoreRepository(gormDB), mock, mockDB
}

func TestGormStoreRepository_FindByConsumerKey(t *testing.T) {
	t.Run("finds store by credential", func(t *testing.T) {
		repo, mock, mockDB := newMockStoreRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"url", "consumer_key", "consumer_secret", "billing", "oms_id", "shipment_method", "ship_from_city", "ship_from_country", "active"}).
			AddRow("https://shop.example.com", "ck_123", "cs_456", `{"country":"TR","city":"Istanbul"}`, "cust-9", "DHL", "Istanbul", "TR", true)

		mock.ExpectQuery(`SELECT \* FROM "stores" WHERE consumer_key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("ck_123", 1).
			WillReturnRows(rows)

		st, err := repo.FindByConsumerKey(context.Background(), "ck_123")

		assert.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, "https://shop.example.com", st.URL)
		assert.Equal(t, "cust-9", st.InternalData.OmsID)
		assert.Equal(t, "TR", st.Billing.CountryCode())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing credential to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockStoreRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stores" WHERE consumer_key = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("ck_unknown", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		st, err := repo.FindByConsumerKey(context.Background(), "ck_unknown")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, st)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStoreRepository_SaveOmsID(t *testing.T) {
	t.Run("updates the oms customer id", func(t *testing.T) {
		repo, mock, mockDB := newMockStoreRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stores" SET "oms_id"=\$1,"updated_at"=\$2 WHERE url = \$3`).
			WithArgs("cust-42", sqlmock.AnyArg(), "https://shop.example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveOmsID(context.Background(), "https://shop.example.com", "cust-42")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports unknown store", func(t *testing.T) {
		repo, mock, mockDB := newMockStoreRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "stores" SET "oms_id"=\$1,"updated_at"=\$2 WHERE url = \$3`).
			WithArgs("cust-42", sqlmock.AnyArg(), "https://nobody.example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveOmsID(context.Background(), "https://nobody.example.com", "cust-42")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStoreRepository_TouchLastOrderDate(t *testing.T) {
	t.Run("stamps the crm field", func(t *testing.T) {
		repo, mock, mockDB := newMockStoreRepository(t)
		defer mockDB.Close()

		at := time.Now()

		mock.ExpectExec(`UPDATE "stores" SET "last_order_date"=\$1,"updated_at"=\$2 WHERE url = \$3`).
			WithArgs(at, sqlmock.AnyArg(), "https://shop.example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.TouchLastOrderDate(context.Background(), "https://shop.example.com", at)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
