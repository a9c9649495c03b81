package sqlite

import (
	"context"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store"
)

type accountsRepo struct {
	q *queries
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id int64) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := r.q.GetAccountByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row, err := r.q.GetAccountByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) (int64, error) {
	id, err := r.q.CreateAccount(ctx, createAccountParams{
		Email:        mapStringNull(a.Email),
		Username:     mapStringNull(a.Username),
		PasswordHash: a.PasswordHash,
		IsGuest:      a.IsGuest,
		StableID:     a.StableID,
		Signature:    a.Signature,
		FirstName:    a.FirstName,
		MiddleName:   a.MiddleName,
		LastName:     a.LastName,
		Organization: a.Organization,
		Interests:    a.Interests,
	})
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *accountsRepo) CreateGuestAccount(ctx context.Context, stableID string) (int64, error) {
	return r.CreateAccount(ctx, domain.Account{IsGuest: true, StableID: stableID})
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	n, err := r.q.UpdateAccount(ctx, updateAccountParams{
		ID:           a.ID,
		Email:        mapStringNull(a.Email),
		Username:     mapStringNull(a.Username),
		FirstName:    a.FirstName,
		MiddleName:   a.MiddleName,
		LastName:     a.LastName,
		Organization: a.Organization,
		Interests:    a.Interests,
	})
	if err != nil {
		return mapConstraint(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id int64, newHash string) error {
	n, err := r.q.UpdateAccountPasswordHash(ctx, newHash, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int64, error) {
	return r.q.CountAccounts(ctx)
}
