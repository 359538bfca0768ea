package employee

import "context"

type EmployeeService interface {
	// Create registers a profile with a bcrypt password hash.
	Create(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Get(ctx context.Context, actor Actor, id string) (ProfileResponse, error)
}
