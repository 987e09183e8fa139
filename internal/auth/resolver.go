package auth

import (
	"context"

	"rcsapi/internal/domain"
	"rcsapi/internal/store"
)

type Store interface {
	GetAccountByID(ctx context.Context, id int64) (store.Account, bool, error)
	GetAccountByAPIKey(ctx context.Context, apiKey string) (store.Account, bool, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, bool, error)
}

// Resolver turns a parsed credential into the account every subsequent
// operation is scoped to. Resolution is read-only.
type Resolver struct {
	Store  Store
	Tokens *TokenManager
}

var errCredentials = domain.Unauthenticatedf("Could not validate credentials")

// ResolveAccount implements the two credential paths: a signed bearer token
// carrying subject username and account id claims, or a static per-account
// API key. Anything else is unauthenticated.
func (r *Resolver) ResolveAccount(ctx context.Context, cred Credential) (store.Account, error) {
	switch cred.Scheme {
	case SchemeBearer:
		claims, err := r.Tokens.Validate(cred.Token)
		if err != nil {
			return store.Account{}, errCredentials
		}
		user, found, err := r.Store.GetUserByUsername(ctx, claims.Subject)
		if err != nil {
			return store.Account{}, err
		}
		if !found {
			return store.Account{}, errCredentials
		}
		account, found, err := r.Store.GetAccountByID(ctx, user.AccountID)
		if err != nil {
			return store.Account{}, err
		}
		if !found {
			return store.Account{}, errCredentials
		}
		return account, nil

	case SchemeAPIKey:
		account, found, err := r.Store.GetAccountByAPIKey(ctx, cred.Token)
		if err != nil {
			return store.Account{}, err
		}
		if !found {
			return store.Account{}, errCredentials
		}
		return account, nil

	default:
		return store.Account{}, errCredentials
	}
}

// ResolveUser is the bearer-only path used by /v1/auth/users/me.
func (r *Resolver) ResolveUser(ctx context.Context, cred Credential) (store.User, error) {
	if cred.Scheme != SchemeBearer {
		return store.User{}, errCredentials
	}
	claims, err := r.Tokens.Validate(cred.Token)
	if err != nil {
		return store.User{}, errCredentials
	}
	user, found, err := r.Store.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		return store.User{}, err
	}
	if !found {
		return store.User{}, errCredentials
	}
	return user, nil
}
