package gatewaytest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// errorResponse is the body of every failure the fake API produces on its own.
type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// recoverJSON turns a handler panic into a 500 with a JSON body, the way the
// real API reports unexpected failures.
func recoverJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// SetRateLimit makes the server answer 429 once a caller exceeds perMinute
// requests beyond burst. Zero disables the limit.
func (s *Server) SetRateLimit(perMinute, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if perMinute <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		limiter := s.limiter
		s.mu.Unlock()
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Message: "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
