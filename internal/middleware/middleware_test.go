package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/quickcart-golang/internal/auth"
	"github.com/quickcart/quickcart-golang/internal/models"
)

// protectedRouter wires the given middleware in front of a probe
// handler that records whether it was reached and what landed on the
// context.
func protectedRouter(mws ...gin.HandlerFunc) (*gin.Engine, *gin.Context) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured gin.Context
	handlers := append(mws, func(c *gin.Context) {
		captured = *c.Copy()
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.GET("/protected", handlers...)
	return r, &captured
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r, _ := protectedRouter(AuthMiddleware())

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header required")
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	r, _ := protectedRouter(AuthMiddleware())

	for _, header := range []string{
		"just-a-token",
		"Basic dXNlcjpwYXNz",
		"Bearer one two",
	} {
		w := get(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	r, _ := protectedRouter(AuthMiddleware())

	w := get(r, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestAuthMiddlewareValidTokenSetsUserID(t *testing.T) {
	token, err := auth.GenerateToken(42)
	require.NoError(t, err)

	r, captured := protectedRouter(AuthMiddleware())

	w := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	userID, exists := captured.Get("userID")
	require.True(t, exists)
	assert.Equal(t, int64(42), userID)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// authStub stands in for AuthMiddleware so the admin gate can be
// tested in isolation.
func authStub(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) { c.Set("userID", userID) }
}

func TestAdminMiddlewareRejectsCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT role FROM users WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(models.RoleCustomer))

	r, _ := protectedRouter(authStub(1), AdminMiddleware(db))

	w := get(r, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminMiddlewareAdmitsAdmin(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT role FROM users WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(models.RoleAdmin))

	r, captured := protectedRouter(authStub(1), AdminMiddleware(db))

	w := get(r, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	role, exists := captured.Get("userRole")
	require.True(t, exists)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestAdminMiddlewareDeletedUserUnauthorized(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT role FROM users WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	r, _ := protectedRouter(authStub(1), AdminMiddleware(db))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddlewareWithoutAuthFirst(t *testing.T) {
	db, _ := newMockDB(t)

	r, _ := protectedRouter(AdminMiddleware(db))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
