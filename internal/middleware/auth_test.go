package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/jobtrail/jobtrail/internal/auth"
)

type fakeProvider struct {
	users map[string]*auth.User
}

func (p *fakeProvider) GetUser(_ context.Context, token string) (*auth.User, error) {
	user, ok := p.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

func newAuthRouter(provider auth.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	r.GET("/protected", RequireAuth(provider, log), func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return r
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	id := uuid.New()
	r := newAuthRouter(&fakeProvider{users: map[string]*auth.User{"good": {ID: id}}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter(&fakeProvider{users: map[string]*auth.User{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "No authorization header provided")
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	r := newAuthRouter(&fakeProvider{users: map[string]*auth.User{"good": {}}})

	for _, header := range []string{"good", "Basic good", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	r := newAuthRouter(&fakeProvider{users: map[string]*auth.User{}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized request")
}

func TestRateLimiterBlocksAfterThreshold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(time.Minute, 3)

	r := gin.New()
	r.GET("/", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiterKeepsActiveClientBudgetUnderPressure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(time.Minute, 2)

	r := gin.New()
	r.GET("/", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	exhausted := "10.0.0.1:1000"
	assert.Equal(t, http.StatusOK, hit(exhausted))
	assert.Equal(t, http.StatusOK, hit(exhausted))
	assert.Equal(t, http.StatusTooManyRequests, hit(exhausted))

	for i := 0; i < maxTrackedClients+100; i++ {
		addr := "10.1." + strconv.Itoa(i/250) + "." + strconv.Itoa(i%250+1) + ":2000"
		assert.Equal(t, http.StatusOK, hit(addr))
	}

	// Flooding the map with other clients must not refill this one.
	assert.Equal(t, http.StatusTooManyRequests, hit(exhausted))
}
