package postgresql

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// newID returns a time-ordered id so rows cluster by insertion order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func timeParam(t *clock.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func timeValue(t pgtype.Time) *clock.TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := clock.FromMicroseconds(t.Microseconds)
	return &v
}

func secondsParam(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(*d / time.Second)
	return &s
}

func durationValue(s *int64) *time.Duration {
	if s == nil {
		return nil
	}
	d := time.Duration(*s) * time.Second
	return &d
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
