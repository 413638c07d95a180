// Package auth wraps the managed authentication provider (Supabase).
// The rest of the system treats it as an opaque capability: obtain a
// token, attach it to API calls, exchange it for a user identity.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the provider's view of an authenticated account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role,omitempty"`
}

// Session is issued on sign-in and carries the access token attached to
// every API request.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Provider exchanges an access token for a user identity. The server-side
// middleware depends on this interface only, so tests can substitute a fake.
type Provider interface {
	GetUser(ctx context.Context, token string) (*User, error)
}

// ErrInvalidToken is returned for missing, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Config points the client at a Supabase project. JWTSecret is optional;
// when set, access tokens are verified locally without a network call.
type Config struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// SupabaseClient talks to the Supabase auth REST API.
type SupabaseClient struct {
	cfg    Config
	client *http.Client
}

// NewSupabaseClient builds a client for the given project.
func NewSupabaseClient(cfg Config) *SupabaseClient {
	return &SupabaseClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account with email and password.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.tokenRequest(ctx, c.cfg.URL+"/auth/v1/signup", credentials{email, password})
}

// SignInWithPassword exchanges credentials for a session.
func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.tokenRequest(ctx, c.cfg.URL+"/auth/v1/token?grant_type=password", credentials{email, password})
}

// SignOut revokes the session behind the token. A failure here is not
// fatal for the caller: local state is cleared regardless.
func (c *SupabaseClient) SignOut(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sign out failed: %s", resp.Status)
	}
	return nil
}

// GetUser validates an access token and returns the identity behind it.
// With a configured JWT secret the token is verified locally; otherwise
// the provider's /auth/v1/user endpoint is authoritative.
func (c *SupabaseClient) GetUser(ctx context.Context, token string) (*User, error) {
	if c.cfg.JWTSecret != "" {
		return c.verifyLocal(token)
	}
	return c.fetchUser(ctx, token)
}

func (c *SupabaseClient) verifyLocal(token string) (*User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user := &User{ID: id}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	return user, nil
}

func (c *SupabaseClient) fetchUser(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &user, nil
}

func (c *SupabaseClient) tokenRequest(ctx context.Context, url string, creds credentials) (*Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"msg"`
			Error   string `json:"error_description"`
		}
		if json.Unmarshal(raw, &apiErr) == nil {
			if apiErr.Message != "" {
				return nil, errors.New(apiErr.Message)
			}
			if apiErr.Error != "" {
				return nil, errors.New(apiErr.Error)
			}
		}
		return nil, fmt.Errorf("auth request failed: %s", resp.Status)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
