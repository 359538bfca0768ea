package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *testutil.Store
	ledger     *balanceService.LedgerImpl
	attendance attendance.AttendanceService
	service    leave.LeaveService
	worker     employee.Actor
	other      employee.Actor
	admin      employee.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := testutil.NewStore()
	tx := store.Transactor()
	ledger := balanceService.NewLedger(tx, store.Attendance(), store.LeaveRequests(), store.Employees())

	add := func(username string, level employee.AccessLevel) employee.Actor {
		return store.AddProfile(employee.Profile{Username: username, FullName: username, AccessLevel: level, Active: true}).Actor()
	}

	return fixture{
		store:      store,
		ledger:     ledger,
		attendance: attendanceService.NewAttendanceService(tx, attendance.DefaultPolicy(), store.Attendance(), store.Employees(), ledger),
		service:    NewLeaveService(tx, store.LeaveRequests(), store.Employees(), ledger),
		worker:     add("worker", employee.LevelEmployee),
		other:      add("other", employee.LevelHRAdmin),
		admin:      add("admin", employee.LevelSuperadmin),
	}
}

func (f fixture) accrue(t *testing.T, date string, entry, exit string) {
	t.Helper()
	_, err := f.attendance.UpsertComplete(context.Background(), f.worker.EmployeeID,
		mustDate(t, date), clock.MustParse(entry), clock.MustParse(exit))
	require.NoError(t, err)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

func TestApprovedLeaveDrivesBalanceNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 07:00-22:00 is 14:30 net, five hours over the standard shift.
	f.accrue(t, "2024-03-04", "07:00", "22:00")

	submitted, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, "5:00", submitted.Balance)
	assert.Nil(t, submitted.Warning)

	decided, err := f.service.Decide(ctx, f.admin, submitted.Request.ID, leave.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, "approved", decided.Status)
	require.NotNil(t, decided.Balance)
	assert.Equal(t, "-3:00", *decided.Balance)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, f.admin.EmployeeID, *decided.DecidedBy)

	current, err := f.ledger.CurrentBalance(ctx, f.worker.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, -3*time.Hour, current)
	assert.Equal(t, current, f.store.Profile(f.worker.EmployeeID).CachedBalance)

	next, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-15", Hours: "01:00"})
	require.NoError(t, err)
	require.NotNil(t, next.Warning)
	assert.Contains(t, *next.Warning, "-3:00")
	assert.Equal(t, "pending", next.Request.Status)
}

func TestDecide_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "02:00"})
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, f.admin, submitted.Request.ID, leave.DecisionReject)
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, f.admin, submitted.Request.ID, leave.DecisionApprove)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	current, err := f.ledger.CurrentBalance(ctx, f.worker.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), current)
}

func TestDecide_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "02:00"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		actor    employee.Actor
		id       string
		decision leave.Decision
		want     error
	}{
		{"below privileged level", f.other, submitted.Request.ID, leave.DecisionApprove, employee.ErrPermissionDenied},
		{"unknown decision", f.admin, submitted.Request.ID, leave.Decision("maybe"), leave.ErrInvalidDecision},
		{"unknown request", f.admin, "missing", leave.DecisionApprove, leave.ErrLeaveRequestNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Decide(ctx, tt.actor, tt.id, tt.decision)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "08/03/2024", Hours: "00:00"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "date")
	assert.Contains(t, verrs.ToMap(), "hours")

	_, err = f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "01:00"})
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "02:00"})
	assert.ErrorIs(t, err, leave.ErrDuplicateRequest)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "02:00"})
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, f.admin, submitted.Request.ID)
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)

	cancelled, err := f.service.Cancel(ctx, f.worker, submitted.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = f.service.Cancel(ctx, f.worker, submitted.Request.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	_, err = f.service.Decide(ctx, f.admin, submitted.Request.ID, leave.DecisionApprove)
	assert.ErrorIs(t, err, leave.ErrInvalidState)
}

func TestGetAndLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.accrue(t, "2024-03-04", "08:00", "19:30")
	mine, err := f.service.Submit(ctx, f.worker, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "01:00"})
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, f.other, leave.SubmitLeaveRequest{Date: "2024-03-08", Hours: "01:00"})
	require.NoError(t, err)

	_, err = f.service.Get(ctx, f.other, mine.Request.ID)
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)
	got, err := f.service.Get(ctx, f.worker, mine.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, "1:00", got.Hours)

	own, err := f.service.ListMine(ctx, f.worker, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.TotalCount)
	assert.Nil(t, own.LeaveRequests[0].Balance)

	_, err = f.service.List(ctx, f.worker, leave.LeaveRequestFilter{})
	assert.ErrorIs(t, err, employee.ErrPermissionDenied)

	pending := "pending"
	all, err := f.service.List(ctx, f.admin, leave.LeaveRequestFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	for _, r := range all.LeaveRequests {
		require.NotNil(t, r.Balance)
		if r.EmployeeID == f.worker.EmployeeID {
			assert.Equal(t, "1:30", *r.Balance)
		}
	}

	bad := "approvedish"
	_, err = f.service.List(ctx, f.admin, leave.LeaveRequestFilter{Status: &bad})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}
