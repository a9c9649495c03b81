package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Repositories hang off it as methods so a transaction-scoped
// Store can hand out the same repos without allowing nested transactions.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. The transaction is rolled back
	// if fn returns an error and committed otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by its numeric id.
	GetAccountByID(ctx context.Context, id int64) (domain.Account, error)

	// GetAccountByEmail matches the stored, already normalized, email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByUsername is used when logging in with a username.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateAccount inserts a registered account and returns its id.
	// Returns ErrAlreadyExists on an email, username or stable id clash.
	CreateAccount(ctx context.Context, a domain.Account) (int64, error)

	// CreateGuestAccount inserts a credential-less guest row.
	CreateGuestAccount(ctx context.Context, stableID string) (int64, error)

	// UpdateAccount overwrites the profile fields of account a.ID: email,
	// username, names, organization and interests. Credentials, guest flag
	// and stable id are left alone. Returns ErrNotFound for unknown ids and
	// ErrAlreadyExists when the email or username belongs to another row.
	UpdateAccount(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	// CountAccounts returns the number of stored accounts, guests included.
	CountAccounts(ctx context.Context) (int64, error)
}
