package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickcart/quickcart-golang/internal/models"
)

// queryUserRole is a helper to get the user's role from the DB.
// The role lives in the database rather than the token so a role change
// takes effect immediately instead of when the token expires.
func queryUserRole(db *sql.DB, userID int64) (string, error) {
	var role string
	query := "SELECT role FROM users WHERE id = ?"
	err := db.QueryRow(query, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// AdminMiddleware must run AFTER AuthMiddleware. It reads the userID
// from the context, looks up the role, and rejects non-admins with 403.
// The ordering matters: an unauthenticated caller gets 401 from the
// auth gate before this role check ever runs.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}
		userID := userIDRaw.(int64)

		// 2. Query DB for the user's role
		role, err := queryUserRole(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				// Token is valid but the account is gone.
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			c.Abort()
			return
		}

		// 3. Check permission
		if role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin resource. Access denied."})
			c.Abort()
			return
		}

		// 4. Success. Add role to context and proceed.
		c.Set("userRole", role)
		c.Next()
	}
}
