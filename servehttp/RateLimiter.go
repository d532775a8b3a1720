package servehttp

import (
	"worksync/bizerror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter rejects requests beyond rps with burst, shared by every client of the guarded routes
func RateLimiter(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			panic(bizerror.ErrTooManyRequests)
		}
		c.Next()
	}
}
