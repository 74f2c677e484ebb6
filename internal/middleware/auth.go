package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CronKeyHeader carries the shared secret of the scheduler that triggers ingests.
const CronKeyHeader = "X-CRON-KEY"

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"status": 0, "data": nil, "err": msg})
}

// AdminJWTMiddleware validates HS256 bearer tokens signed with jwtSecret.
// An empty secret rejects every request.
func AdminJWTMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		if jwtSecret == "" {
			logger.Warn("Admin request rejected: no admin secret configured")
			abortWithError(c, http.StatusUnauthorized, "Admin access is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			abortWithError(c, http.StatusUnauthorized, msg)
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || !token.Valid || claims.Subject == "" {
			logger.Warn("Invalid token claims or token is not valid")
			abortWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		ctx := context.WithValue(c.Request.Context(), adminSubjectKey, claims.Subject)
		ctx = WithLogger(ctx, logger.With(slog.String("admin", claims.Subject)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CronKeyMiddleware admits requests whose X-CRON-KEY header equals key. An
// empty key rejects every request.
func CronKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(CronKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			GetLoggerFromCtx(c.Request.Context()).Warn("Cron request rejected", slog.Bool("key_present", provided != ""))
			abortWithError(c, http.StatusForbidden, "Forbidden: bad or missing X-CRON-KEY")
			return
		}
		c.Next()
	}
}
