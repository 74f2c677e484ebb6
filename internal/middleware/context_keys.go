package middleware

import "github.com/gin-gonic/gin"

// adminSubjectKey stores the subject of a verified admin token.
const adminSubjectKey = contextKey("adminSubject")

// GetAdminSubjectFromContext retrieves the subject of the admin token that
// authorized the request.
func GetAdminSubjectFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(adminSubjectKey); v != nil {
		subject, ok := v.(string)
		return subject, ok
	}
	return "", false
}
