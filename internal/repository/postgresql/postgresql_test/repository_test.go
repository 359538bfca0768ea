package postgresql_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping PostgreSQL repository tests")
		os.Exit(0)
	}

	var err error
	testDB, err = database.NewPostgreSQLDB(context.Background(), dsn, database.PoolSize{})
	if err != nil {
		fmt.Println("failed to connect to test database:", err)
		os.Exit(1)
	}

	schema, err := os.ReadFile("../../../../migrations/001_timesheet.up.sql")
	if err != nil {
		fmt.Println("failed to read migration:", err)
		os.Exit(1)
	}
	if _, err := testDB.Exec(context.Background(), string(schema)); err != nil {
		fmt.Println("failed to apply migration:", err)
		os.Exit(1)
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE leave_requests, attendance_records, employee_profiles CASCADE")
	require.NoError(t, err)
}

func createProfile(t *testing.T, repo employee.EmployeeRepository, username string, affiliation *string) employee.Profile {
	t.Helper()
	p, err := repo.Create(context.Background(), employee.Profile{
		Username:          username,
		PasswordHash:      "x",
		FullName:          "Test " + username,
		AffiliationNumber: affiliation,
		AccessLevel:       employee.LevelEmployee,
		Active:            true,
	})
	require.NoError(t, err)
	return p
}

func TestEmployeeRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	affiliation := "0012345678"
	p := createProfile(t, repo, "mgarcia", &affiliation)

	byNumber, err := repo.GetByAffiliationNumber(ctx, "0012345678")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byNumber.ID)

	_, err = repo.Create(ctx, employee.Profile{Username: "mgarcia", PasswordHash: "x", FullName: "Dup", AccessLevel: 1})
	assert.ErrorIs(t, err, employee.ErrUsernameExists)

	_, err = repo.Create(ctx, employee.Profile{Username: "other", PasswordHash: "x", FullName: "Dup", AffiliationNumber: &affiliation, AccessLevel: 1})
	assert.ErrorIs(t, err, employee.ErrAffiliationNumberExists)

	require.NoError(t, repo.UpdateCachedBalance(ctx, p.ID, -90*time.Minute))
	got, err := repo.GetByUsername(ctx, "mgarcia")
	require.NoError(t, err)
	assert.Equal(t, -90*time.Minute, got.CachedBalance)

	_, err = repo.GetByID(ctx, "018f0000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRepositories_MalformedIDsAreNotFound(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	_, err := postgresql.NewEmployeeRepository(testDB).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = postgresql.NewEmployeeRepository(testDB).GetByIDForUpdate(ctx, "abc")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = postgresql.NewAttendanceRepository(testDB).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	_, err = postgresql.NewLeaveRequestRepository(testDB).GetByID(ctx, "abc")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestAttendanceRepository_UpsertAndSums(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(testDB)
	repo := postgresql.NewAttendanceRepository(testDB)
	p := createProfile(t, employees, "worker", nil)
	policy := attendance.DefaultPolicy()

	store := func(date string, entry, exit string) attendance.Attendance {
		d, err := time.Parse(time.DateOnly, date)
		require.NoError(t, err)
		in, out := clock.MustParse(entry), clock.MustParse(exit)
		a, err := repo.Upsert(ctx, attendance.Complete(p.ID, d, in, out, policy.ComputeDayHours(d, in, out)))
		require.NoError(t, err)
		return a
	}

	first := store("2024-03-04", "08:00", "18:00")
	second := store("2024-03-04", "08:00", "19:00")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, time.Hour, second.OvertimeDelta)
	require.NotNil(t, second.EmployeeName)
	assert.Equal(t, "Test worker", *second.EmployeeName)

	store("2024-04-01", "08:00", "17:30")

	d, _ := time.Parse(time.DateOnly, "2024-03-05")
	incomplete, err := repo.Upsert(ctx, attendance.IncompleteDay(p.ID, d, ptr(clock.New(8, 0)), nil, policy))
	require.NoError(t, err)
	assert.True(t, incomplete.ForcedExit)
	assert.Nil(t, incomplete.NetDuration)

	total, err := repo.SumOvertime(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, total)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	march, err := repo.SumOvertime(ctx, p.ID, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, march)

	rows, total64, err := repo.List(ctx, attendance.AttendanceFilter{EmployeeID: &p.ID, Page: 1, Limit: 2, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total64)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-04", rows[0].Date.Format(time.DateOnly))
}

func TestLeaveRequestRepository(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(testDB)
	repo := postgresql.NewLeaveRequestRepository(testDB)
	p := createProfile(t, employees, "worker", nil)
	d := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, leave.LeaveRequest{EmployeeID: p.ID, RequestedDate: d, RequestedDuration: 8 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusPending, created.Status)

	_, err = repo.Create(ctx, leave.LeaveRequest{EmployeeID: p.ID, RequestedDate: d, RequestedDuration: time.Hour})
	assert.ErrorIs(t, err, leave.ErrDuplicateRequest)

	exists, err := repo.ExistsForDate(ctx, p.ID, d)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, created.Transition(leave.LeaveRequestStatusApproved, p.ID, time.Now().UTC()))
	require.NoError(t, repo.UpdateStatus(ctx, created))

	sum, err := repo.SumApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, sum)
}

func TestTxManager_RollsBack(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(testDB)
	tx := postgresql.NewTxManager(testDB)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		createProfile(t, employees, "ghost", nil)
		_, err := employees.Create(txCtx, employee.Profile{Username: "inside", PasswordHash: "x", FullName: "Inside", AccessLevel: 1})
		require.NoError(t, err)
		return tx.WithinTransaction(txCtx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	_, err = employees.GetByUsername(ctx, "inside")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = employees.GetByUsername(ctx, "ghost")
	assert.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
