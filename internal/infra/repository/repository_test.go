package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlmockの上にgorm(postgres方言)を載せる
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSequenceNext_ReturnsCounterValue(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO sequence_counters .* ON CONFLICT \(scope, year\) DO UPDATE`).
		WithArgs("tracking", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(12)))

	v, err := NewSequenceGormRepository(db).Next(context.Background(), model.SequenceScopeTracking, 2026)

	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNext_PropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO sequence_counters`).WillReturnError(errors.New("connection reset"))

	_, err := NewSequenceGormRepository(db).Next(context.Background(), model.SequenceScopeInvoice, 2026)

	assert.EqualError(t, err, "connection reset")
}

func TestUpdateStatusIfVersion_Applied(t *testing.T) {
	db, mock := newMockDB(t)
	loc := "Port of Walvis Bay"

	mock.ExpectExec(`UPDATE "shipments" SET .*WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewShipmentGormRepository(db).UpdateStatusIfVersion(context.Background(), 42, 3, model.ShipmentStatusInTransit, &loc)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfVersion_StaleVersion(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "shipments" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	err := NewShipmentGormRepository(db).UpdateStatusIfVersion(context.Background(), 42, 2, model.ShipmentStatusInTransit, nil)

	assert.ErrorIs(t, err, repo.ErrStaleVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfVersion_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE "shipments" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	err := NewShipmentGormRepository(db).UpdateStatusIfVersion(context.Background(), 99, 1, model.ShipmentStatusInTransit, nil)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 一意制約違反はSAVEPOINTまで戻すだけなので、同じTxで入れ直してcommitできる
func TestShipmentCreate_DuplicateKeepsTxUsable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`^SAVEPOINT sp\d+$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "shipments"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "shipments_tracking_number_key"})
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT sp\d+$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^SAVEPOINT sp\d+$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "shipments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(43)))
	mock.ExpectCommit()

	s := model.Shipment{UserID: 7, Status: model.ShipmentStatusRegistered, Version: 1}
	err := db.Transaction(func(tx *gorm.DB) error {
		r := NewShipmentGormRepository(tx)

		first := s
		first.TrackingNumber = "TON-2026-000005"
		if err := r.Create(context.Background(), &first); !errors.Is(err, repo.ErrDuplicate) {
			return err
		}

		s.TrackingNumber = "TON-2026-000006"
		return r.Create(context.Background(), &s)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(43), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShipmentFindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewShipmentGormRepository(db).FindByID(context.Background(), 42)

	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMarkPaidIfPending(t *testing.T) {
	cases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"pending invoice is paid", 1, true},
		{"already paid", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec(`UPDATE "invoices" SET .*WHERE id = \$\d+ AND status = \$\d+`).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			ok, err := NewInvoiceGormRepository(db).MarkPaidIfPending(context.Background(), 5, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))

			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), repo.ErrNotFound)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23505"}), repo.ErrDuplicate)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), repo.ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, translateError(other))
}

func TestAuditLogSearch_CountsThenPages(t *testing.T) {
	db, mock := newMockDB(t)
	action := model.AuditActionConfirmPayment

	mock.ExpectQuery(`SELECT count\(\*\) FROM "audit_logs" WHERE action = \$1`).
		WithArgs(action).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE action = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(action, 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_user_id", "action", "resource_type", "resource_id"}).
			AddRow(int64(1), int64(1), "CONFIRM_PAYMENT", "invoice", int64(5)))

	logs, total, err := NewAuditLogGormRepository(db).Search(context.Background(), repo.AuditLogFilter{
		Action: &action,
		Limit:  2,
		Offset: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditResourceInvoice, logs[0].ResourceType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
