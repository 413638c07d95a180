package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, id uuid.UUID, email string, expires time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   id.String(),
		"email": email,
		"role":  "authenticated",
		"exp":   expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestGetUserLocalVerification(t *testing.T) {
	client := NewSupabaseClient(Config{JWTSecret: testSecret})
	id := uuid.New()

	user, err := client.GetUser(context.Background(), signToken(t, id, "alice@example.com", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestGetUserRejectsExpiredToken(t *testing.T) {
	client := NewSupabaseClient(Config{JWTSecret: testSecret})

	_, err := client.GetUser(context.Background(), signToken(t, uuid.New(), "a@b.co", time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserRejectsWrongSecret(t *testing.T) {
	client := NewSupabaseClient(Config{JWTSecret: "a-different-secret"})

	_, err := client.GetUser(context.Background(), signToken(t, uuid.New(), "a@b.co", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetUserRESTFallback(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + id.String() + `","email":"bob@example.com"}`))
	}))
	defer srv.Close()

	client := NewSupabaseClient(Config{URL: srv.URL, AnonKey: "anon"})

	user, err := client.GetUser(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	_, err = client.GetUser(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600,"user":{"id":"` + uuid.NewString() + `","email":"alice@example.com"}}`))
	}))
	defer srv.Close()

	client := NewSupabaseClient(Config{URL: srv.URL, AnonKey: "anon"})
	session, err := client.SignInWithPassword(context.Background(), "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", session.AccessToken)
	assert.Equal(t, "alice@example.com", session.User.Email)
}

func TestSignUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "carol@example.com", creds.Email)
		assert.Equal(t, "Str0ng!Pass", creds.Password)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-new","token_type":"bearer","expires_in":3600,"user":{"id":"` + uuid.NewString() + `","email":"carol@example.com"}}`))
	}))
	defer srv.Close()

	client := NewSupabaseClient(Config{URL: srv.URL, AnonKey: "anon"})
	session, err := client.SignUp(context.Background(), "carol@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", session.AccessToken)
	assert.Equal(t, "carol@example.com", session.User.Email)
}

func TestSignUpSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg":"User already registered"}`))
	}))
	defer srv.Close()

	client := NewSupabaseClient(Config{URL: srv.URL})
	_, err := client.SignUp(context.Background(), "carol@example.com", "Str0ng!Pass")
	require.Error(t, err)
	assert.Equal(t, "User already registered", err.Error())
}

func TestSignInSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	client := NewSupabaseClient(Config{URL: srv.URL})
	_, err := client.SignInWithPassword(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestSessionManagerNotifiesOnChange(t *testing.T) {
	m := NewSessionManager()

	var tokens []string
	m.OnChange(func(token string) { tokens = append(tokens, token) })

	m.Set(&Session{AccessToken: "t1"})
	assert.Equal(t, "t1", m.Token())

	m.Set(&Session{AccessToken: "t2"})
	m.Clear()

	assert.Equal(t, []string{"t1", "t2", ""}, tokens)
	assert.Nil(t, m.Current())
	assert.Equal(t, "", m.Token())
}
