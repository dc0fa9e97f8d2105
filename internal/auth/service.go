// Package auth implements registration, login, and profile lookup over the
// users collection.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solystore/pointshop-backend/internal/locks"
	pkgauth "github.com/solystore/pointshop-backend/pkg/auth"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/collections/models"
	"github.com/solystore/pointshop-backend/pkg/config"
	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
	"github.com/solystore/pointshop-backend/pkg/security"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// Session bundles the sanitized account and its freshly minted token.
type Session struct {
	User  Profile `json:"user"`
	Token string  `json:"token"`
}

// Profile is a user record with the password hash stripped.
type Profile struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Points    int         `json:"points"`
	Role      models.Role `json:"role"`
	Admin     bool        `json:"admin"`
	CreatedAt time.Time   `json:"timestamp"`
}

// Service exposes account operations.
type Service interface {
	Register(ctx context.Context, username, password string) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Me(ctx context.Context, userID string) (*Profile, error)
}

type service struct {
	store       *collections.Store
	locks       *locks.Manager
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds the account service.
func NewService(store *collections.Store, lockManager *locks.Manager, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	if lockManager == nil {
		return nil, fmt.Errorf("lock manager required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		store:       store,
		locks:       lockManager,
		jwtConfig:   jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Register creates a member account with zero points. Username uniqueness
// is checked and the new record written under the users lock so a
// concurrent registration or purchase cannot interleave.
func (s *service) Register(ctx context.Context, username, password string) (*Session, error) {
	if len(username) < minUsernameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("username must be at least %d characters", minUsernameLen))
	}
	if len(password) < minPasswordLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hashed, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	release, err := s.locks.Acquire(ctx, collections.Users)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock acquisition interrupted")
	}
	defer release()

	users, err := collections.Load[models.User](s.store, collections.Users)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
	}

	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  hashed,
		Points:    0,
		Role:      models.RoleMember,
		CreatedAt: s.now().UTC(),
	}
	users = append(users, user)

	if err := collections.Replace(s.store, collections.Users, users); err != nil {
		return nil, err
	}
	return s.session(user)
}

// Login verifies credentials and mints a token. The error is the same for
// an unknown username and a wrong password.
func (s *service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	users, err := collections.Load[models.User](s.store, collections.Users)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Username != username {
			continue
		}
		ok, err := security.VerifyPassword(password, users[i].Password)
		if err != nil || !ok {
			break
		}
		return s.session(users[i])
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
}

// Me returns the requester's sanitized profile.
func (s *service) Me(ctx context.Context, userID string) (*Profile, error) {
	users, err := collections.Load[models.User](s.store, collections.Users)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			profile := sanitize(users[i])
			return &profile, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *service) session(user models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwtConfig, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &Session{User: sanitize(user), Token: token}, nil
}

func sanitize(user models.User) Profile {
	return Profile{
		ID:        user.ID,
		Username:  user.Username,
		Points:    user.Points,
		Role:      user.Role,
		Admin:     user.Role.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
}
