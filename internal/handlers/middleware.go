package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
)

// TenantMiddleware identifies the browser session through a cookie and
// stores its id on the gin context. A fresh id is issued when the cookie is
// missing or malformed.
func (h *HTTPHandler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := c.Cookie(h.cookieName)
		if err != nil || !validTenantID(tenantID) {
			tenantID = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     h.cookieName,
				Value:    tenantID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(tenantKey, tenantID)
		c.Next()
	}
}

// RequestLogger logs one line per request through google/logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "%s %s %d %s"
		args := []any{c.Request.Method, c.Request.URL.Path, status, time.Since(start)}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Errorf(line, args...)
		case status >= http.StatusBadRequest:
			logger.Warningf(line, args...)
		default:
			logger.Infof(line, args...)
		}
	}
}

func validTenantID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
