package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)

	// GetByIDForUpdate locks the profile row until the surrounding
	// transaction ends. It serializes every write touching the employee's
	// attendance or balance.
	GetByIDForUpdate(ctx context.Context, id string) (Profile, error)

	GetByAffiliationNumber(ctx context.Context, number string) (Profile, error)
	GetByUsername(ctx context.Context, username string) (Profile, error)
	ListActive(ctx context.Context) ([]Profile, error)
	UpdateCachedBalance(ctx context.Context, id string, balance time.Duration) error
}
