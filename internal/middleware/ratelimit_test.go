package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiterStore_AllowAndCleanup(t *testing.T) {
	// allow 5 events immediately then the 6th should be rejected
	s := NewLimiterStore(5, 5, 100*time.Millisecond)
	defer s.Stop()

	key := "test@example.com"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}

	if s.Allow(key) {
		t.Fatalf("expected limiter to block after burst consumed")
	}
}

func TestRateLimit_KeysByEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewLimiterStore(1, 1, time.Minute)
	defer s.Stop()

	r := gin.New()
	r.POST("/login", RateLimit(s), func(c *gin.Context) {
		// the handler must still be able to read the body after the
		// middleware peeked at it
		var body struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	do := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("a@example.com"); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := do("a@example.com"); code != http.StatusTooManyRequests {
		t.Fatalf("second request for same email should be limited, got %d", code)
	}
	// a different account gets its own bucket
	if code := do("b@example.com"); code != http.StatusOK {
		t.Fatalf("request for different email should pass, got %d", code)
	}
}
