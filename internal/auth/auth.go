// Package auth implements account registration, login, and bearer-token
// authentication. Passwords are stored as bcrypt hashes; sessions are
// stateless JWTs carrying the user id.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/shopline/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned on login with a wrong email or
	// password. The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when a bearer token is missing, malformed,
	// or expired.
	ErrUnauthorized = errors.New("invalid or expired token")
)

// Provider authenticates a bearer credential into a caller identity.
// Identity is derived fresh per request; no session state is kept.
type Provider interface {
	Authenticate(ctx context.Context, token string) (user.Identity, error)
}

// Service issues and validates JWT bearer tokens backed by the user store.
type Service struct {
	users  user.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates an auth Service signing tokens with the given secret.
func NewService(users user.Repository, secret []byte, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, username, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, user.ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login verifies the credentials and issues a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign token")
	}
	return token, u, nil
}

// Authenticate validates a bearer token and resolves it to the caller's
// identity.
func (s *Service) Authenticate(ctx context.Context, token string) (user.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return user.Identity{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return user.Identity{}, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return user.Identity{}, ErrUnauthorized
	}

	return user.Identity{UserID: u.ID, Email: u.Email}, nil
}
