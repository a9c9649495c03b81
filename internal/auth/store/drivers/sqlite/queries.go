package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

type accountRow struct {
	ID           int64
	Email        sql.NullString
	Username     sql.NullString
	PasswordHash string
	IsGuest      bool
	StableID     string
	Signature    string
	FirstName    string
	MiddleName   string
	LastName     string
	Organization string
	Interests    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const accountColumns = `id, email, username, password_hash, is_guest, stable_id, signature,
	first_name, middle_name, last_name, organization, interests, created_at, updated_at`

func scanAccount(row *sql.Row) (accountRow, error) {
	var a accountRow
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Username,
		&a.PasswordHash,
		&a.IsGuest,
		&a.StableID,
		&a.Signature,
		&a.FirstName,
		&a.MiddleName,
		&a.LastName,
		&a.Organization,
		&a.Interests,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

const getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *queries) GetAccountByID(ctx context.Context, id int64) (accountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *queries) GetAccountByEmail(ctx context.Context, email string) (accountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByEmail, email))
}

const getAccountByUsername = `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

func (q *queries) GetAccountByUsername(ctx context.Context, username string) (accountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByUsername, username))
}

type createAccountParams struct {
	Email        sql.NullString
	Username     sql.NullString
	PasswordHash string
	IsGuest      bool
	StableID     string
	Signature    string
	FirstName    string
	MiddleName   string
	LastName     string
	Organization string
	Interests    string
}

const createAccount = `INSERT INTO accounts (
	email, username, password_hash, is_guest, stable_id, signature,
	first_name, middle_name, last_name, organization, interests
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *queries) CreateAccount(ctx context.Context, arg createAccountParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createAccount,
		arg.Email,
		arg.Username,
		arg.PasswordHash,
		arg.IsGuest,
		arg.StableID,
		arg.Signature,
		arg.FirstName,
		arg.MiddleName,
		arg.LastName,
		arg.Organization,
		arg.Interests,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type updateAccountParams struct {
	ID           int64
	Email        sql.NullString
	Username     sql.NullString
	FirstName    string
	MiddleName   string
	LastName     string
	Organization string
	Interests    string
}

const updateAccount = `UPDATE accounts
SET email = ?, username = ?, first_name = ?, middle_name = ?, last_name = ?,
	organization = ?, interests = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *queries) UpdateAccount(ctx context.Context, arg updateAccountParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccount,
		arg.Email,
		arg.Username,
		arg.FirstName,
		arg.MiddleName,
		arg.LastName,
		arg.Organization,
		arg.Interests,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateAccountPasswordHash = `UPDATE accounts
SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *queries) UpdateAccountPasswordHash(ctx context.Context, passwordHash string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccountPasswordHash, passwordHash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countAccounts = `SELECT COUNT(*) FROM accounts`

func (q *queries) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countAccounts).Scan(&count)
	return count, err
}
