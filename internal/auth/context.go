package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey = "userID"
	tokenKey  = "accessToken"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetToken returns the bearer token of the request, forwarded to the booking backend.
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
