package employee

import (
	"strings"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

type CreateProfileRequest struct {
	Username          string      `json:"username"`
	Password          string      `json:"password"`
	FullName          string      `json:"full_name"`
	AffiliationNumber *string     `json:"affiliation_number,omitempty"`
	AccessLevel       AccessLevel `json:"access_level"`
}

func (r *CreateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Username = strings.TrimSpace(r.Username)
	if !validator.IsValidUsername(r.Username) {
		errs.Add("username", "username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if !validator.IsValidPassword(r.Password) {
		errs.Add("password", "password must be at least 8 characters")
	}
	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "full_name is required")
	}
	if r.AffiliationNumber != nil && !validator.IsValidAffiliationNumber(*r.AffiliationNumber) {
		errs.Add("affiliation_number", "affiliation_number must contain only digits")
	}
	if r.AccessLevel == 0 {
		r.AccessLevel = LevelEmployee
	}
	if !r.AccessLevel.Valid() {
		errs.Add("access_level", "access_level must be between 1 and 5")
	}

	return errs.Err()
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Username) {
		errs.Add("username", "username is required")
	}
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}
	return errs.Err()
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   int64       `json:"expires_at"`
	EmployeeID  string      `json:"employee_id"`
	FullName    string      `json:"full_name"`
	AccessLevel AccessLevel `json:"access_level"`
}

type ProfileResponse struct {
	ID                string      `json:"id"`
	Username          string      `json:"username"`
	FullName          string      `json:"full_name"`
	AffiliationNumber *string     `json:"affiliation_number,omitempty"`
	AccessLevel       AccessLevel `json:"access_level"`
	Active            bool        `json:"active"`
}

func NewProfileResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:                p.ID,
		Username:          p.Username,
		FullName:          p.FullName,
		AffiliationNumber: p.AffiliationNumber,
		AccessLevel:       p.AccessLevel,
		Active:            p.Active,
	}
}
