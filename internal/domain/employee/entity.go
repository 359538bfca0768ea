package employee

import (
	"time"
)

// AccessLevel is the ordinal 1-5 gate carried by every profile.
type AccessLevel int

const (
	LevelEmployee   AccessLevel = 1
	LevelSupervisor AccessLevel = 2
	LevelManager    AccessLevel = 3
	LevelHRAdmin    AccessLevel = 4
	LevelSuperadmin AccessLevel = 5

	// PrivilegedLevel may act on other employees' records and decide requests.
	PrivilegedLevel = LevelSuperadmin
)

func (l AccessLevel) Valid() bool {
	return l >= LevelEmployee && l <= LevelSuperadmin
}

func (l AccessLevel) String() string {
	switch l {
	case LevelEmployee:
		return "employee"
	case LevelSupervisor:
		return "supervisor"
	case LevelManager:
		return "manager"
	case LevelHRAdmin:
		return "hr_admin"
	case LevelSuperadmin:
		return "superadmin"
	default:
		return "unknown"
	}
}

type Profile struct {
	ID                string
	Username          string
	PasswordHash      string
	FullName          string
	AffiliationNumber *string
	AccessLevel       AccessLevel
	Active            bool
	// CachedBalance mirrors the ledger; it is refreshed after each mutation
	// and never read back as a source of truth.
	CachedBalance time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAccess mirrors the numeric gate: active profiles at or above level.
func (p Profile) HasAccess(level AccessLevel) bool {
	return p.Active && p.AccessLevel >= level
}

func (p Profile) Actor() Actor {
	return Actor{EmployeeID: p.ID, Level: p.AccessLevel, Active: p.Active}
}
