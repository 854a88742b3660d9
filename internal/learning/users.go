package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// NewUser is a registration request; Password is plaintext.
type NewUser struct {
	Username   string
	Email      string
	Password   string
	IsEducator bool
}

func (s *Service) hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Register creates an active account. Duplicate username or email fails
// with ErrConflict.
func (s *Service) Register(ctx context.Context, in NewUser) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return User{}, invalid("username, email and password are required")
	}
	h, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	now := s.clock()
	return s.store.CreateUser(ctx, User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: h,
		IsActive:     true,
		IsEducator:   in.IsEducator,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield ErrBadCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrBadCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	if !u.IsActive {
		return User{}, ErrInactiveUser
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, p Page) ([]User, error) {
	return s.store.ListUsers(ctx, p)
}

// UpdateUser applies a patch to the user's own record. A new password is
// re-hashed.
func (s *Service) UpdateUser(ctx context.Context, id int64, p UserPatch) (User, error) {
	if p.Username != nil && blank(*p.Username) {
		return User{}, invalid("username is required")
	}
	if p.Email != nil && blank(*p.Email) {
		return User{}, invalid("email is required")
	}
	var h string
	if p.Password != nil {
		if *p.Password == "" {
			return User{}, invalid("password is required")
		}
		var err error
		if h, err = s.hash(*p.Password); err != nil {
			return User{}, err
		}
	}
	var out User
	err := s.store.WithinTx(ctx, func(st Store) error {
		u, err := st.GetUser(ctx, id)
		if err != nil {
			return err
		}
		p.apply(&u, h)
		u.UpdatedAt = s.clock()
		out, err = st.UpdateUser(ctx, u)
		return err
	})
	return out, err
}
