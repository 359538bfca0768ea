package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
	cost         int
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, jwtService jwt.Service) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
		cost:         bcrypt.DefaultCost,
	}
}

func (s *EmployeeServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateProfileRequest) (employee.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.ProfileResponse{}, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return employee.ProfileResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.employeeRepo.Create(ctx, employee.Profile{
		Username:          req.Username,
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(req.FullName),
		AffiliationNumber: req.AffiliationNumber,
		AccessLevel:       req.AccessLevel,
		Active:            true,
	})
	if err != nil {
		return employee.ProfileResponse{}, err
	}

	slog.Info("employee profile created", "employee_id", profile.ID, "username", profile.Username, "access_level", profile.AccessLevel)
	return employee.NewProfileResponse(profile), nil
}

// Login implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Login(ctx context.Context, req employee.LoginRequest) (employee.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.LoginResponse{}, err
	}

	profile, err := s.employeeRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.LoginResponse{}, employee.ErrInvalidCredentials
		}
		return employee.LoginResponse{}, fmt.Errorf("failed to get employee by username: %w", err)
	}

	if profile.PasswordHash == "" {
		return employee.LoginResponse{}, employee.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return employee.LoginResponse{}, employee.ErrInvalidCredentials
	}
	if !profile.Active {
		return employee.LoginResponse{}, employee.ErrEmployeeInactive
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(profile)
	if err != nil {
		return employee.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return employee.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		EmployeeID:  profile.ID,
		FullName:    profile.FullName,
		AccessLevel: profile.AccessLevel,
	}, nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, actor employee.Actor, id string) (employee.ProfileResponse, error) {
	if err := actor.Authorize(id); err != nil {
		return employee.ProfileResponse{}, err
	}
	profile, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.ProfileResponse{}, err
	}
	return employee.NewProfileResponse(profile), nil
}
