package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"rcsapi/internal/domain"
	"rcsapi/internal/store"
)

type fakeAuthStore struct {
	accounts map[int64]store.Account
	byKey    map[string]store.Account
	users    map[string]store.User
}

func (f *fakeAuthStore) GetAccountByID(_ context.Context, id int64) (store.Account, bool, error) {
	a, ok := f.accounts[id]
	return a, ok, nil
}

func (f *fakeAuthStore) GetAccountByAPIKey(_ context.Context, key string) (store.Account, bool, error) {
	a, ok := f.byKey[key]
	return a, ok, nil
}

func (f *fakeAuthStore) GetUserByUsername(_ context.Context, username string) (store.User, bool, error) {
	u, ok := f.users[username]
	return u, ok, nil
}

func newTestResolver() (*Resolver, *TokenManager) {
	tokens := newTestManager(time.Minute)
	st := &fakeAuthStore{
		accounts: map[int64]store.Account{1: {ID: 1, Name: "Acme", APIKey: "key_acme"}},
		byKey:    map[string]store.Account{"key_acme": {ID: 1, Name: "Acme", APIKey: "key_acme"}},
		users:    map[string]store.User{"alice": {ID: 10, Username: "alice", AccountID: 1, IsActive: true}},
	}
	return &Resolver{Store: st, Tokens: tokens}, tokens
}

func TestResolveAccountBearer(t *testing.T) {
	r, tokens := newTestResolver()

	token, _, err := tokens.Generate("alice", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	account, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeBearer, Token: token})
	if err != nil {
		t.Fatalf("ResolveAccount: %v", err)
	}
	if account.ID != 1 {
		t.Fatalf("account id %d, want 1", account.ID)
	}
}

func TestResolveAccountAPIKey(t *testing.T) {
	r, _ := newTestResolver()

	account, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeAPIKey, Token: "key_acme"})
	if err != nil {
		t.Fatalf("ResolveAccount: %v", err)
	}
	if account.ID != 1 {
		t.Fatalf("account id %d, want 1", account.ID)
	}

	if _, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeAPIKey, Token: "nope"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("unknown api key: got %v, want unauthenticated", err)
	}
}

func TestResolveAccountUnsupportedScheme(t *testing.T) {
	r, _ := newTestResolver()

	_, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeUnsupported, Token: "whatever"})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("got %v, want unauthenticated", err)
	}
}

func TestResolveAccountUnknownPrincipal(t *testing.T) {
	r, tokens := newTestResolver()

	// Token for a user the store has never seen.
	token, _, err := tokens.Generate("mallory", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeBearer, Token: token}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("unknown user: got %v, want unauthenticated", err)
	}

	// User whose account row is gone.
	r.Store.(*fakeAuthStore).users["bob"] = store.User{ID: 11, Username: "bob", AccountID: 99}
	token, _, err = tokens.Generate("bob", 99)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := r.ResolveAccount(context.Background(), Credential{Scheme: SchemeBearer, Token: token}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("unknown account: got %v, want unauthenticated", err)
	}
}

func TestResolveUserBearerOnly(t *testing.T) {
	r, tokens := newTestResolver()

	token, _, err := tokens.Generate("alice", 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	user, err := r.ResolveUser(context.Background(), Credential{Scheme: SchemeBearer, Token: token})
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username %q, want alice", user.Username)
	}

	if _, err := r.ResolveUser(context.Background(), Credential{Scheme: SchemeAPIKey, Token: "key_acme"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("api key on user path: got %v, want unauthenticated", err)
	}
}
