package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrDuplicateRequest     = errors.New("a leave request already exists for this date")
	ErrInvalidState         = errors.New("leave request is no longer pending")
	ErrInvalidDecision      = errors.New("decision must be approve or reject")
)
