package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, is_verified, verification_token, token_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsVerified,
		&u.VerificationToken,
		&u.TokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail fetches a user by exact email match.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("accounts: find by email: %w", err)
	}
	return user, nil
}

// Create inserts a fresh unverified account. The unique constraint on email
// closes the check-then-act race between concurrent registrations.
func (r *PGRepository) Create(ctx context.Context, u NewUser) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, is_verified, verification_token, token_expiry)
		 VALUES ($1, $2, $3, FALSE, $4, $5)
		 RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.VerificationToken, u.TokenExpiry,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("accounts: create: %w", err)
	}
	return id, nil
}

// RotateToken installs a new token and expiry on an unverified account.
func (r *PGRepository) RotateToken(ctx context.Context, email, token string, expiry time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET verification_token = $2, token_expiry = $3, updated_at = now()
		 WHERE email = $1 AND is_verified = FALSE`,
		email, token, expiry,
	)
	if err != nil {
		return fmt.Errorf("accounts: rotate token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyVerified
	}
	return nil
}

// ConsumeToken verifies the account holding the token in a single conditional
// update, so a token can only ever be consumed once.
func (r *PGRepository) ConsumeToken(ctx context.Context, token string, now time.Time) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET is_verified = TRUE, verification_token = NULL, token_expiry = NULL, updated_at = now()
		 WHERE verification_token = $1 AND token_expiry > $2
		 RETURNING `+userColumns,
		token, now,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("accounts: consume token: %w", err)
	}
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
