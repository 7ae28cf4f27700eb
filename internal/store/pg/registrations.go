package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uslaccafrica/registration-mailer/internal/domain"
)

// RegistrationStore implements domain.RegistrationRepository.
// It never writes: verified flags and tokens are mutated by the
// confirmation flow, not by the mailer.
type RegistrationStore struct {
	pool *pgxpool.Pool
}

// NewRegistrationStore creates a store backed by the given pool.
func NewRegistrationStore(pool *pgxpool.Pool) *RegistrationStore {
	return &RegistrationStore{pool: pool}
}

func (s *RegistrationStore) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	const query = `
		SELECT id, email, full_name, verified, verification_token, created_at
		FROM registrations
		WHERE id = $1
	`
	var reg domain.Registration
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&reg.ID, &reg.Email, &reg.FullName,
		&reg.Verified, &reg.VerificationToken, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (s *RegistrationStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
