package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brgy-records/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryGetActiveByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(userSelect+" WHERE is_active = $1 AND username = $2 ORDER BY id ASC LIMIT $3").
		WithArgs(true, "clerk", 1).
		WillReturnRows(userRows())

	_, err := repo.GetActiveByUsername(context.Background(), "clerk")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2").
		WithArgs(false, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2").
		WithArgs(false, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), 3))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByUsernameOrEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`
		SELECT
			COALESCE(BOOL_OR(username = $1), FALSE),
			COALESCE(BOOL_OR(email = $2), FALSE)
		FROM users
		WHERE username = $1 OR email = $2`).
		WithArgs("clerk", "clerk@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow(false, true))

	usernameTaken, emailTaken, err := repo.ExistsByUsernameOrEmail(context.Background(), "clerk", "clerk@example.com")
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.True(t, emailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResidentDetailsStats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResidentDetailsRepository(db)

	rows := sqlmock.NewRows([]string{"certificate_type", "count"}).
		AddRow("residency", 4).
		AddRow("indigency", 2).
		AddRow(nil, 3)
	mock.ExpectQuery(`
		SELECT certificate_type, COUNT(1)
		FROM resident_details
		GROUP BY certificate_type`).
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 3, stats.ProfilesOnly)
	assert.Equal(t, 4, stats.ByCertificate[types.CertificateResidency])
	assert.Equal(t, 2, stats.ByCertificate[types.CertificateIndigency])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKasambahayStatsAveragesNumericSalary(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewKasambahayRepository(db)

	mock.ExpectQuery(`
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE employment_arrangement = 'Live-in'),
			COALESCE(ROUND(AVG(monthly_salary), 2), 0)
		FROM kasambahay_registration`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "live_in", "avg"}).AddRow(3, 2, "8333.33"))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.LiveIn)
	assert.True(t, stats.AverageSalary.Equal(decimal.RequireFromString("8333.33")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessPermitStats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBusinessPermitRepository(db)

	mock.ExpectQuery(`
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE application_type = 'NEW'),
			COUNT(1) FILTER (WHERE application_type = 'RENEWAL'),
			COUNT(1) FILTER (WHERE valid_until >= CURRENT_DATE),
			COALESCE(SUM(amount_paid) FILTER (WHERE date_paid IS NOT NULL), 0)
		FROM business_permits`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "new", "renewal", "active", "collected"}).AddRow(5, 3, 2, 4, "1500.00"))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.New)
	assert.Equal(t, 2, stats.Renewal)
	assert.Equal(t, 4, stats.Active)
	assert.True(t, stats.TotalCollected.Equal(decimal.NewFromInt(1500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessPermitRecentUsesProprietorName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBusinessPermitRepository(db)
	created := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, proprietor_name, NULL, NULL, NULL, business_name, created_at FROM business_permits ORDER BY created_at DESC, id DESC LIMIT $1").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first", "middle", "last", "suffix", "detail", "created_at"}).
			AddRow(2, "Maria Santos", nil, nil, nil, "Santos Sari-Sari Store", created))

	summaries, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, types.RecordSummary{
		ID:          2,
		Type:        types.RecordBusinessPermit,
		DisplayName: "Maria Santos",
		Detail:      "Santos Sari-Sari Store",
		CreatedAt:   created,
	}, summaries[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInhabitantSearchEscapesTerm(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInhabitantRepository(db)

	mock.ExpectQuery(
		"SELECT id, first_name, middle_name, last_name, suffix, household_no, created_at FROM barangay_inhabitants " +
			"WHERE first_name ILIKE $1 OR middle_name ILIKE $1 OR last_name ILIKE $1 OR household_no ILIKE $1 " +
			"OR CONCAT_WS(' ', first_name, middle_name, last_name) ILIKE $1 ORDER BY created_at DESC, id DESC LIMIT $2").
		WithArgs(`%Juan\_%`, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first", "middle", "last", "suffix", "detail", "created_at"}).
			AddRow(1, "Juan", "Reyes", "Dela Cruz", "Jr.", "HH-001", time.Now()))

	summaries, err := repo.SearchByName(context.Background(), "Juan_", 5)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Juan Reyes Dela Cruz Jr.", summaries[0].DisplayName)
	assert.Equal(t, "HH-001", summaries[0].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessPermitRecordPaymentNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBusinessPermitRepository(db)

	mock.ExpectExec("UPDATE business_permits SET amount_paid = $1, date_paid = $2, or_number = $3, updated_at = NOW() WHERE id = $4").
		WithArgs(sqlmock.AnyArg(), "2024-06-01", "OR-1001", 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.RecordPayment(context.Background(), 42, types.PermitPayment{
		AmountPaid: decimal.NewFromInt(500),
		DatePaid:   types.NewDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		ORNumber:   "OR-1001",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessPermitCreateDefaultsFee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBusinessPermitRepository(db)

	args := make([]driver.Value, 21)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[0] = types.DefaultPermitFee
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO business_permits (amount_paid, application_type,")).
		WithArgs(args...).
		WillReturnError(context.Canceled)

	_, err = repo.Create(context.Background(), types.BusinessPermit{
		ApplicationType:  types.ApplicationNew,
		BusinessName:     "Santos Sari-Sari Store",
		NatureOfBusiness: "Retail",
		BusinessAddress:  "Purok 3",
		ProprietorName:   "Maria Santos",
		ControlNumber:    "BP-2024-ABCDEF12",
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func officialRow(rows *sqlmock.Rows, id int, position, name string, order int) *sqlmock.Rows {
	now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	return rows.AddRow(id, position, name, nil, nil, order, now, now)
}

func TestOfficialRepositoryListInLetterheadOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOfficialRepository(db)

	rows := sqlmock.NewRows(officialColumns)
	officialRow(rows, 1, "Punong Barangay", "Maria Santos", types.OrderPunongBarangay)
	officialRow(rows, 10, "Barangay Secretary", "Ana Cruz", types.OrderSecretary)
	mock.ExpectQuery("SELECT " + repo.table.selectList() + " FROM officials ORDER BY position_order ASC").
		WillReturnRows(rows)

	officials, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, officials, 2)
	assert.Equal(t, "Maria Santos", officials[0].Name)
	assert.Nil(t, officials[0].Title)
	assert.Equal(t, types.OrderSecretary, officials[1].PositionOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficialRepositoryUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOfficialRepository(db)
	title := "Hon."

	mock.ExpectExec("UPDATE officials SET committee = $1, name = $2, position = $3, title = $4, updated_at = NOW() WHERE id = $5").
		WithArgs(sqlmock.AnyArg(), "Pedro Reyes", "Punong Barangay", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT " + repo.table.selectList() + " FROM officials WHERE id = $1").
		WithArgs(1).
		WillReturnRows(officialRow(sqlmock.NewRows(officialColumns), 1, "Punong Barangay", "Pedro Reyes", types.OrderPunongBarangay))

	official, err := repo.Update(context.Background(), 1, types.Official{
		Position: "Punong Barangay",
		Name:     "Pedro Reyes",
		Title:    &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pedro Reyes", official.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficialRepositoryUpdateMissingSeat(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOfficialRepository(db)

	mock.ExpectExec("UPDATE officials SET committee = $1, name = $2, position = $3, title = $4, updated_at = NOW() WHERE id = $5").
		WithArgs(sqlmock.AnyArg(), "Pedro Reyes", "Kagawad", sqlmock.AnyArg(), 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), 99, types.Official{Position: "Kagawad", Name: "Pedro Reyes"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
