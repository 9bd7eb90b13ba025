// Package auth issues and verifies bearer tokens and checks passwords.
//
// Tokens are HS256 JWTs whose subject is the user id. An expired token is
// rejected everywhere except Refresh, which trades a correctly signed token
// that expired within the refresh window for a fresh one.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/sdk/environment"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

const minKeyLength = 32

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrRefreshWindow      = errors.New("token expired too long ago to refresh")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Config is the exportable auth configuration.
type Config struct {
	SigningKey    string        `env:"AUTH_SIGNING_KEY" required:"true"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" default:"1h"`
	RefreshWindow time.Duration `env:"AUTH_REFRESH_WINDOW" default:"720h"`
	Issuer        string        `env:"AUTH_ISSUER" default:"todolist"`
}

// Users is the part of the user repository auth needs.
type Users interface {
	Get(ctx context.Context, userID uuid.UUID) (usersrepo.User, error)
	GetByEmail(ctx context.Context, email string) (usersrepo.User, error)
}

// Token is a signed bearer credential and the moment it stops being accepted.
type Token struct {
	Token     string
	ExpiresAt time.Time
}

// Auth issues and checks tokens for one signing key.
type Auth struct {
	key           []byte
	ttl           time.Duration
	refreshWindow time.Duration
	issuer        string
	users         Users
	now           func() time.Time
}

// Option overrides a configured value at construction.
type Option func(*Auth)

// WithClock replaces time.Now. Meant for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// NewFromEnv builds an Auth from <prefix>_AUTH_* variables.
func NewFromEnv(prefix string, users Users, opts ...Option) (*Auth, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing auth config: %w", err)
	}
	return New(cfg, users, opts...)
}

func New(cfg Config, users Users, opts ...Option) (*Auth, error) {
	if len(cfg.SigningKey) < minKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", minKeyLength)
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	a := &Auth{
		key:           []byte(cfg.SigningKey),
		ttl:           cfg.TokenTTL,
		refreshWindow: cfg.RefreshWindow,
		issuer:        cfg.Issuer,
		users:         users,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Issue signs a token for userID.
func (a *Auth) Issue(userID uuid.UUID) (Token, error) {
	now := a.now()
	expires := now.Add(a.ttl).Truncate(time.Second)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Token: signed, ExpiresAt: expires}, nil
}

// Verify returns the user id of a valid token. A correctly signed token past
// its expiry yields ErrTokenExpired so callers can tell it apart.
func (a *Auth) Verify(token string) (uuid.UUID, error) {
	claims, err := a.parse(token,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		// jwt checks the signature before the claims, so an expiry error
		// means the signature was fine.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return subject(claims)
}

// Refresh issues a new token for the owner of token, which may be expired
// as long as its signature is valid, it expired less than the refresh window
// ago, and its user still exists.
func (a *Auth) Refresh(ctx context.Context, token string) (Token, error) {
	claims, err := a.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Issuer != a.issuer || claims.ExpiresAt == nil {
		return Token{}, ErrInvalidToken
	}
	if a.refreshWindow > 0 && a.now().Sub(claims.ExpiresAt.Time) > a.refreshWindow {
		return Token{}, ErrRefreshWindow
	}

	userID, err := subject(claims)
	if err != nil {
		return Token{}, err
	}

	if _, err := a.users.Get(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Token{}, ErrInvalidToken
		}
		return Token{}, fmt.Errorf("refresh: %w", err)
	}

	return a.Issue(userID)
}

// Authenticate checks an email and password pair and issues a token.
func (a *Auth) Authenticate(ctx context.Context, email, password string) (Token, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, usersrepo.ErrInvalidEmail) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	return a.Issue(user.UserID)
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (a *Auth) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
	)

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &claims, nil
}

func subject(claims *jwt.RegisteredClaims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
