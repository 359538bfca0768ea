package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrUsernameExists          = errors.New("username already registered")
	ErrAffiliationNumberExists = errors.New("affiliation number already assigned")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrEmployeeInactive        = errors.New("employee is inactive")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInsufficientAccessLevel = errors.New("insufficient access level")
	ErrActorMissing            = errors.New("no authenticated employee in context")
)
