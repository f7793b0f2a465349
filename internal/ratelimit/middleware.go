package ratelimit

import (
	"net/http"

	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/gin-gonic/gin"
)

// CodeRateLimitIP tags responses refused by the per-IP write limit.
const CodeRateLimitIP = "RATE_LIMIT_IP"

type Middleware struct {
	limiter RateLimiter
	logger  logger.Logger
}

func NewMiddleware(limiter RateLimiter, log logger.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		logger:  log,
	}
}

// WriteRateLimit limits coordinate writes per client IP. A failing limiter
// lets the request through.
func (m *Middleware) WriteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := m.limiter.AllowCoordinateWrite(c.Request.Context(), ip)
		if err != nil {
			m.logger.Warn("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		if !allowed {
			appErr := apperrors.NewAppError(apperrors.ErrRateLimitExceeded,
				"Rate limit exceeded. Please try again later.", http.StatusTooManyRequests).WithCode(CodeRateLimitIP)
			c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
				"success": false,
				"error":   appErr.Error(),
				"code":    appErr.Code,
			})
			return
		}

		c.Next()
	}
}
