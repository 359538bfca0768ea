// Package testutil holds in-memory stand-ins for the PostgreSQL repositories
// so service tests run without a database.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

// Store is a single in-memory database shared by the fake repositories.
// Its transactor snapshots every table and restores them when the
// outermost transaction returns an error.
type Store struct {
	mu         sync.Mutex
	profiles   map[string]employee.Profile
	attendance map[string]attendance.Attendance
	requests   map[string]leave.LeaveRequest

	// FailUpsert, when set, is consulted before every attendance write.
	FailUpsert func(a attendance.Attendance) error

	// StrictIDs makes id lookups fail with ErrMalformedID on non-UUID input,
	// the way a UUID column rejects them.
	StrictIDs bool

	Transactions int
	// BalanceWrites counts cached balance updates.
	BalanceWrites int
}

func NewStore() *Store {
	return &Store{
		profiles:   map[string]employee.Profile{},
		attendance: map[string]attendance.Attendance{},
		requests:   map[string]leave.LeaveRequest{},
	}
}

// ErrMalformedID is returned under StrictIDs for ids that are not UUIDs.
var ErrMalformedID = errors.New("invalid input syntax for type uuid")

func (s *Store) checkID(id string) error {
	if !s.StrictIDs {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// AddProfile inserts p, filling the id and timestamps when empty.
func (s *Store) AddProfile(p employee.Profile) employee.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.AccessLevel == 0 {
		p.AccessLevel = employee.LevelEmployee
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.ID] = p
	return p
}

// AttendanceCount returns how many day records are stored.
func (s *Store) AttendanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendance)
}

// Profile returns the stored profile, including its cached balance.
func (s *Store) Profile(id string) employee.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id]
}

func (s *Store) Transactor() database.Transactor        { return &transactor{s} }
func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepo{s} }
func (s *Store) Attendance() attendance.AttendanceRepository {
	return &attendanceRepo{s}
}
func (s *Store) LeaveRequests() leave.LeaveRequestRepository { return &leaveRepo{s} }

type txKey struct{}

type transactor struct{ s *Store }

// WithinTransaction implements database.Transactor.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.s.mu.Lock()
	t.s.Transactions++
	profiles := maps.Clone(t.s.profiles)
	records := maps.Clone(t.s.attendance)
	requests := maps.Clone(t.s.requests)
	t.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.mu.Lock()
		t.s.profiles, t.s.attendance, t.s.requests = profiles, records, requests
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type employeeRepo struct{ s *Store }

func (r *employeeRepo) Create(ctx context.Context, p employee.Profile) (employee.Profile, error) {
	r.s.mu.Lock()
	for _, existing := range r.s.profiles {
		if strings.EqualFold(existing.Username, p.Username) {
			r.s.mu.Unlock()
			return employee.Profile{}, employee.ErrUsernameExists
		}
		if p.AffiliationNumber != nil && existing.AffiliationNumber != nil && *existing.AffiliationNumber == *p.AffiliationNumber {
			r.s.mu.Unlock()
			return employee.Profile{}, employee.ErrAffiliationNumberExists
		}
	}
	r.s.mu.Unlock()
	return r.s.AddProfile(p), nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	if err := r.s.checkID(id); err != nil {
		return employee.Profile{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return employee.Profile{}, employee.ErrEmployeeNotFound
	}
	return p, nil
}

func (r *employeeRepo) GetByIDForUpdate(ctx context.Context, id string) (employee.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepo) GetByAffiliationNumber(ctx context.Context, number string) (employee.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.AffiliationNumber != nil && *p.AffiliationNumber == number {
			return p, nil
		}
	}
	return employee.Profile{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepo) GetByUsername(ctx context.Context, username string) (employee.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if strings.EqualFold(p.Username, username) {
			return p, nil
		}
	}
	return employee.Profile{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepo) ListActive(ctx context.Context) ([]employee.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Profile
	for _, p := range r.s.profiles {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *employeeRepo) UpdateCachedBalance(ctx context.Context, id string, balance time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	p.CachedBalance = balance
	p.UpdatedAt = time.Now()
	r.s.profiles[id] = p
	r.s.BalanceWrites++
	return nil
}

type attendanceRepo struct{ s *Store }

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

func (r *attendanceRepo) withName(a attendance.Attendance) attendance.Attendance {
	if p, ok := r.s.profiles[a.EmployeeID]; ok {
		name := p.FullName
		a.EmployeeName = &name
	}
	return a
}

func (r *attendanceRepo) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if r.s.FailUpsert != nil {
		if err := r.s.FailUpsert(a); err != nil {
			return attendance.Attendance{}, err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[a.EmployeeID]; !ok {
		return attendance.Attendance{}, employee.ErrEmployeeNotFound
	}

	now := time.Now()
	a.ID, a.CreatedAt = newID(), now
	for id, existing := range r.s.attendance {
		if existing.EmployeeID == a.EmployeeID && sameDay(existing.Date, a.Date) {
			a.ID, a.CreatedAt = id, existing.CreatedAt
			break
		}
	}
	a.UpdatedAt = now
	r.s.attendance[a.ID] = a
	return r.withName(a), nil
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if err := r.s.checkID(id); err != nil {
		return attendance.Attendance{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.withName(a), nil
}

func (r *attendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendance {
		if a.EmployeeID == employeeID && sameDay(a.Date, date) {
			return r.withName(a), nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []attendance.Attendance
	for _, a := range r.s.attendance {
		day := a.Date.Format(time.DateOnly)
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.StartDate != nil && *filter.StartDate != "" && day < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && *filter.EndDate != "" && day > *filter.EndDate {
			continue
		}
		if filter.Incomplete != nil && a.ForcedExit != *filter.Incomplete {
			continue
		}
		out = append(out, r.withName(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if filter.SortOrder == "asc" {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *attendanceRepo) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	var out []attendance.Attendance
	for _, a := range r.s.attendance {
		day := a.Date.Format(time.DateOnly)
		if day < lo || day > hi {
			continue
		}
		if employeeID != nil && a.EmployeeID != *employeeID {
			continue
		}
		out = append(out, r.withName(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return *out[i].EmployeeName < *out[j].EmployeeName
	})
	return out, nil
}

func (r *attendanceRepo) Recent(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	empID := employeeID
	all, _, err := r.List(ctx, attendance.AttendanceFilter{EmployeeID: &empID, SortOrder: "desc"})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *attendanceRepo) SumOvertime(ctx context.Context, employeeID string, from, to *time.Time) (time.Duration, error) {
	if err := r.s.checkID(employeeID); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var total time.Duration
	for _, a := range r.s.attendance {
		if a.EmployeeID != employeeID {
			continue
		}
		if from != nil && a.Date.Before(*from) {
			continue
		}
		if to != nil && !a.Date.Before(*to) {
			continue
		}
		total += a.OvertimeDelta
	}
	return total, nil
}

type leaveRepo struct{ s *Store }

func (r *leaveRepo) withName(l leave.LeaveRequest) leave.LeaveRequest {
	if p, ok := r.s.profiles[l.EmployeeID]; ok {
		name := p.FullName
		l.EmployeeName = &name
	}
	return l
}

func (r *leaveRepo) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.requests {
		if existing.EmployeeID == request.EmployeeID && sameDay(existing.RequestedDate, request.RequestedDate) {
			return leave.LeaveRequest{}, leave.ErrDuplicateRequest
		}
	}
	now := time.Now()
	request.ID = newID()
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}
	request.CreatedAt, request.UpdatedAt = now, now
	r.s.requests[request.ID] = request
	return r.withName(request), nil
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if err := r.s.checkID(id); err != nil {
		return leave.LeaveRequest{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withName(l), nil
}

func (r *leaveRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRepo) ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.requests {
		if l.EmployeeID == employeeID && sameDay(l.RequestedDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRepo) UpdateStatus(ctx context.Context, request leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.requests[request.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	l.Status = request.Status
	l.DecidedBy = request.DecidedBy
	l.DecidedAt = request.DecidedAt
	l.UpdatedAt = time.Now()
	r.s.requests[l.ID] = l
	return nil
}

func (r *leaveRepo) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []leave.LeaveRequest
	for _, l := range r.s.requests {
		day := l.RequestedDate.Format(time.DateOnly)
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && l.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(l.Status) != *filter.Status {
			continue
		}
		if filter.StartDate != nil && *filter.StartDate != "" && day < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && *filter.EndDate != "" && day > *filter.EndDate {
			continue
		}
		out = append(out, r.withName(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *leaveRepo) ListRange(ctx context.Context, employeeID *string, from, to time.Time) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	var out []leave.LeaveRequest
	for _, l := range r.s.requests {
		day := l.RequestedDate.Format(time.DateOnly)
		if day < lo || day > hi {
			continue
		}
		if employeeID != nil && l.EmployeeID != *employeeID {
			continue
		}
		out = append(out, r.withName(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedDate.Before(out[j].RequestedDate) })
	return out, nil
}

func (r *leaveRepo) SumApproved(ctx context.Context, employeeID string) (time.Duration, error) {
	if err := r.s.checkID(employeeID); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total time.Duration
	for _, l := range r.s.requests {
		if l.EmployeeID == employeeID && l.Status == leave.LeaveRequestStatusApproved {
			total += l.RequestedDuration
		}
	}
	return total, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return slices.Clone(items)
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	return slices.Clone(items[start:min(start+limit, len(items))])
}
