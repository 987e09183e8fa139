package service

import (
	"context"
	"time"

	"rcsapi/internal/auth"
	"rcsapi/internal/domain"
	"rcsapi/internal/store"
)

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, bool, error)
	GetAccountByID(ctx context.Context, id int64) (store.Account, bool, error)
	InsertUser(ctx context.Context, in store.UserInsert) (store.User, error)
}

type UserService struct {
	Store  UserStore
	Tokens *auth.TokenManager
}

// Register creates a user under an existing account. Uniqueness checks run
// in the order the API has always reported them: username, then email, then
// account existence.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest, now time.Time) (domain.UserView, error) {
	if _, found, err := s.Store.GetUserByUsername(ctx, req.Username); err != nil {
		return domain.UserView{}, err
	} else if found {
		return domain.UserView{}, domain.Conflictf("Username already registered")
	}

	if _, found, err := s.Store.GetUserByEmail(ctx, req.Email); err != nil {
		return domain.UserView{}, err
	} else if found {
		return domain.UserView{}, domain.Conflictf("Email already registered")
	}

	if _, found, err := s.Store.GetAccountByID(ctx, req.AccountID); err != nil {
		return domain.UserView{}, err
	} else if !found {
		return domain.UserView{}, domain.NotFoundf("Account with ID %d not found", req.AccountID)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.UserView{}, err
	}

	user, err := s.Store.InsertUser(ctx, store.UserInsert{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		AccountID:    req.AccountID,
		Now:          now,
	})
	if err != nil {
		return domain.UserView{}, err
	}
	return userView(user), nil
}

// Authenticate verifies a username/password pair and issues an access token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.TokenResponse, error) {
	user, found, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	if !found || !auth.CheckPassword(user.PasswordHash, password) {
		return domain.TokenResponse{}, domain.Unauthenticatedf("Incorrect username or password")
	}

	token, expiresAt, err := s.Tokens.Generate(user.Username, user.AccountID)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	return domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func userView(u store.User) domain.UserView {
	return domain.UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AccountID: u.AccountID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
