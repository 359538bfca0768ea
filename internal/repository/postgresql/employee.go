package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `
	id, username, password_hash, full_name, affiliation_number,
	access_level, active, cached_balance_seconds, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanProfile(row pgx.Row) (employee.Profile, error) {
	var p employee.Profile
	var level int16
	var balance int64
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&p.FullName,
		&p.AffiliationNumber,
		&level,
		&p.Active,
		&balance,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Profile{}, employee.ErrEmployeeNotFound
		}
		return employee.Profile{}, err
	}
	p.AccessLevel = employee.AccessLevel(level)
	p.CachedBalance = time.Duration(balance) * time.Second
	return p, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, p employee.Profile) (employee.Profile, error) {
	q := GetQuerier(ctx, r.db)

	if p.ID == "" {
		p.ID = newID()
	}
	query := `
		INSERT INTO employee_profiles (id, username, password_hash, full_name, affiliation_number, access_level, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + profileColumns

	created, err := scanProfile(q.QueryRow(ctx, query,
		p.ID, p.Username, p.PasswordHash, p.FullName, p.AffiliationNumber, int16(p.AccessLevel), p.Active,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, "employee_profiles_username_key"):
			return employee.Profile{}, employee.ErrUsernameExists
		case isUniqueViolation(err, "employee_profiles_affiliation_number_key"):
			return employee.Profile{}, employee.ErrAffiliationNumberExists
		}
		return employee.Profile{}, fmt.Errorf("failed to create employee profile: %w", err)
	}
	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	if !validator.IsValidUUID(id) {
		return employee.Profile{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM employee_profiles WHERE id = $1`, id))
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Profile, error) {
	if !validator.IsValidUUID(id) {
		return employee.Profile{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, r.db)
	return scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM employee_profiles WHERE id = $1 FOR UPDATE`, id))
}

// GetByAffiliationNumber implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByAffiliationNumber(ctx context.Context, number string) (employee.Profile, error) {
	q := GetQuerier(ctx, r.db)
	return scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM employee_profiles WHERE affiliation_number = $1`, number))
}

// GetByUsername implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUsername(ctx context.Context, username string) (employee.Profile, error) {
	q := GetQuerier(ctx, r.db)
	return scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM employee_profiles WHERE lower(username) = lower($1)`, username))
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Profile, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+profileColumns+` FROM employee_profiles WHERE active ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee profiles: %w", err)
	}
	defer rows.Close()

	var profiles []employee.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateCachedBalance implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateCachedBalance(ctx context.Context, id string, balance time.Duration) error {
	if !validator.IsValidUUID(id) {
		return employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employee_profiles
		SET cached_balance_seconds = $2, updated_at = now()
		WHERE id = $1
	`, id, seconds(balance))
	if err != nil {
		return fmt.Errorf("failed to update cached balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
