package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func testRouter(secret []byte, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", RequireAuth(secret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": c.GetString(CtxUserIDKey), "role": c.GetString(CtxRoleKey)})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("test-secret")
	r := testRouter(secret)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer not-a-token").Code)

	// token signed with a different secret
	bad := signToken(t, []byte("other-secret"), "ana@example.com", RoleEmployee)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+bad).Code)

	good := signToken(t, secret, "ana@example.com", RoleEmployee)
	w := doGet(r, "Bearer "+good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")
}

func TestRequireAuthRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	r := testRouter(secret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ana@example.com",
		"role": RoleEmployee,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+signed).Code)
}

func TestRequireRole(t *testing.T) {
	secret := []byte("test-secret")
	r := testRouter(secret, RoleAdmin, RoleManager)

	employee := signToken(t, secret, "ana@example.com", RoleEmployee)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer "+employee).Code)

	manager := signToken(t, secret, "mia@example.com", RoleManager)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+manager).Code)

	admin := signToken(t, secret, "joe@example.com", RoleAdmin)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+admin).Code)
}
