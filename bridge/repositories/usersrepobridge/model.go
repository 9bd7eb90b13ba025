package usersrepobridge

import (
	"errors"
	"time"

	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/core/scaffolding/ids"
)

// User is the wire form of an account. The password hash never leaves the
// server.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c CreateUserInput) Validate() error {
	if c.Email == "" || c.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

// CredentialsInput is the body of POST /auth/token when no bearer token is
// presented.
type CredentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c CredentialsInput) Validate() error {
	if c.Email == "" || c.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

// Token is the response of POST /auth/token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func MarshalToBridge(user usersrepo.User) User {
	return User{
		ID:    ids.Encode(user.UserID),
		Email: user.Email,
	}
}

func MarshalTokenToBridge(tok auth.Token) Token {
	return Token{
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt.UTC(),
	}
}
