package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

var transitions = map[LeaveRequestStatus][]LeaveRequestStatus{
	LeaveRequestStatusPending: {
		LeaveRequestStatusApproved,
		LeaveRequestStatusRejected,
		LeaveRequestStatusCancelled,
	},
}

func (s LeaveRequestStatus) Valid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved,
		LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s LeaveRequestStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s LeaveRequestStatus) CanTransitionTo(next LeaveRequestStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Decision is what an approver may choose.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Status() (LeaveRequestStatus, bool) {
	switch d {
	case DecisionApprove:
		return LeaveRequestStatusApproved, true
	case DecisionReject:
		return LeaveRequestStatusRejected, true
	}
	return "", false
}

// LeaveRequest asks to spend compensatory hours on one date.
type LeaveRequest struct {
	ID                string
	EmployeeID        string
	RequestedDate     time.Time
	RequestedDuration time.Duration
	Reason            string
	Status            LeaveRequestStatus
	DecidedBy         *string
	DecidedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// Transition moves the request to next, stamping the decision when it comes
// from an approver.
func (r *LeaveRequest) Transition(next LeaveRequestStatus, actorID string, at time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidState
	}
	r.Status = next
	r.UpdatedAt = at
	if next == LeaveRequestStatusApproved || next == LeaveRequestStatusRejected {
		r.DecidedBy = &actorID
		r.DecidedAt = &at
	}
	return nil
}
