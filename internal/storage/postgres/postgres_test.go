package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/storage"
)

// openMock wires gorm onto a sqlmock connection. Expectation patterns in
// these tests stay loose (substring regexes) because the SQL text is
// gorm-generated.
func openMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewStore(db), mock
}

func appColumns() []string {
	return []string{"id", "user_id", "company", "role", "status", "applied_date", "notes", "job_link", "created_at", "updated_at"}
}

func TestListByUserScopesAndOrders(t *testing.T) {
	store, mock := openMock(t)
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "job_applications" WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(appColumns()).
			AddRow(2, userID.String(), "Globex", "Analyst", "Interview", nil, nil, nil, now, now).
			AddRow(1, userID.String(), "Acme", "Engineer", "Applied", nil, nil, nil, now.Add(-time.Hour), now.Add(-time.Hour)))

	apps, err := store.ListByUser(context.Background(), userID, storage.ListFilter{})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, uint(2), apps[0].ID)
	assert.Equal(t, models.StatusInterview, apps[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserAppliesFilters(t *testing.T) {
	store, mock := openMock(t)
	userID := uuid.New()

	mock.ExpectQuery(`company ILIKE .+ OR role ILIKE`).
		WithArgs(userID, "Interview", "%acme%", "%acme%").
		WillReturnRows(sqlmock.NewRows(appColumns()))

	_, err := store.ListByUser(context.Background(), userID, storage.ListFilter{
		Status: models.StatusInterview,
		Search: "acme",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserNotFound(t *testing.T) {
	store, mock := openMock(t)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "job_applications" WHERE id = $1 AND user_id = $2`)).
		WithArgs(7, userID, 1).
		WillReturnRows(sqlmock.NewRows(appColumns()))

	_, err := store.GetByUser(context.Background(), 7, userID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByUser(t *testing.T) {
	store, mock := openMock(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "job_applications" WHERE id = $1 AND user_id = $2`)).
		WithArgs(7, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteByUser(context.Background(), 7, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByUserNotFound(t *testing.T) {
	store, mock := openMock(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "job_applications"`).
		WithArgs(99, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.DeleteByUser(context.Background(), 99, userID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
