package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoToken is returned when the backend accepted the credentials but sent
// no usable token.
var ErrNoToken = errors.New("no access token in response")

// AuthService wraps /auth/login and /auth/register.
type AuthService struct {
	c *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Login exchanges credentials for a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var raw []byte
	if err := s.c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &raw); err != nil {
		return "", err
	}
	return extractToken(raw)
}

// Register creates an account and returns its first JWT.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, error) {
	var raw []byte
	body := registerRequest{Email: email, Password: password, Name: name}
	if err := s.c.post(ctx, "/auth/register", body, &raw); err != nil {
		return "", err
	}
	return extractToken(raw)
}

// extractToken accepts {"access_token": "..."}, a JSON string or the bare token.
func extractToken(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ErrNoToken
	}
	var obj struct {
		AccessToken string `json:"access_token"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.AccessToken != "" {
		return obj.AccessToken, nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
		return "", ErrNoToken
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", ErrNoToken
	}
	return string(raw), nil
}
