package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/store"
)

// ErrInvalidCredentials is returned for an unknown login or wrong password.
var ErrInvalidCredentials = eris.New("Invalid credentials")

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Admin     *model.Admin `json:"admin"`
}

// Accounts manages admin users backed by a store.
type Accounts struct {
	store  store.Store
	tokens *TokenManager
}

// NewAccounts returns an Accounts. tokens may be nil when only account
// creation is needed.
func NewAccounts(s store.Store, tokens *TokenManager) *Accounts {
	return &Accounts{store: s, tokens: tokens}
}

// Create hashes password and stores a new admin. Duplicate usernames or
// emails wrap store.ErrConflict.
func (a *Accounts) Create(ctx context.Context, username, email, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, eris.New("auth: username and email are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{Username: username, Email: email, PasswordHash: hash}
	if err := a.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Seed creates the initial admin when no admins exist yet. An empty
// password skips seeding.
func (a *Accounts) Seed(ctx context.Context, username, email, password string) (bool, error) {
	if password == "" {
		zap.L().Info("admin seed skipped: no seed password configured")
		return false, nil
	}
	n, err := a.store.CountAdmins(ctx)
	if err != nil {
		return false, eris.Wrap(err, "auth: count admins")
	}
	if n > 0 {
		return false, nil
	}
	admin, err := a.Create(ctx, username, email, password)
	if err != nil {
		return false, eris.Wrap(err, "auth: seed admin")
	}
	zap.L().Info("seeded admin account", zap.String("username", admin.Username))
	return true, nil
}

// Login checks credentials and issues a token. login may be a username or
// an email address.
func (a *Accounts) Login(ctx context.Context, login, password string) (*Session, error) {
	if a.tokens == nil {
		return nil, eris.New("auth: token manager not configured")
	}
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	admin, err := a.store.FindAdmin(ctx, strings.TrimSpace(login))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, eris.Wrap(err, "auth: find admin")
	}

	ok, err := VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		zap.L().Warn("stored password hash unreadable", zap.String("admin_id", admin.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := a.tokens.Issue(admin)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Admin: admin}, nil
}
