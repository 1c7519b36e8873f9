package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

const uniqueViolation = "23505"

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates a Postgres-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
		SELECT id, email, display_name, avatar_url, role, status, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	row := r.pool.QueryRow(ctx, query, strings.ToLower(email))

	var account domain.Account
	var role string
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.AvatarURL,
		&role,
		&account.Status,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	account.Role = domain.Role(role)
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account == nil || account.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO accounts (id, email, display_name, avatar_url, role, status, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), NOW())
	RETURNING created_at, updated_at;
	`

	err := r.pool.QueryRow(ctx, query,
		account.ID,
		strings.ToLower(account.Email),
		account.DisplayName,
		account.AvatarURL,
		string(account.Role),
		account.Status,
		account.PasswordHash,
		nullTime(account.CreatedAt),
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}
