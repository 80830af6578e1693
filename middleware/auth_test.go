package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/billing-backoffice/config"
	"github.com/yourusername/billing-backoffice/models"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret"}
}

func protectedRouter(cfg *config.Config, perms ...Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("")
	group.Use(JwtAuthMiddleware(cfg))
	handlers := []gin.HandlerFunc{}
	for _, p := range perms {
		handlers = append(handlers, RequirePermission(p))
	}
	handlers = append(handlers, func(c *gin.Context) {
		resp := gin.H{"user_id": c.GetUint("userID"), "role": c.GetString("role")}
		if customerID, ok := c.Get("customerID"); ok {
			resp["customer_id"] = customerID
		}
		c.JSON(http.StatusOK, resp)
	})
	group.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJwtAuthMiddlewareMissingHeader(t *testing.T) {
	router := protectedRouter(testConfig())
	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJwtAuthMiddlewareMalformedHeader(t *testing.T) {
	router := protectedRouter(testConfig())
	for _, header := range []string{"Bearer", "Basic abc", "token-without-scheme"} {
		w := doRequest(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJwtAuthMiddlewareInvalidToken(t *testing.T) {
	router := protectedRouter(testConfig())
	w := doRequest(router, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidToken")
}

func TestJwtAuthMiddlewareWrongSecret(t *testing.T) {
	router := protectedRouter(testConfig())
	token, err := GenerateToken(1, models.RoleAdmin, nil, "other-secret", time.Hour)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJwtAuthMiddlewareExpiredToken(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg)
	token, err := GenerateToken(1, models.RoleAdmin, nil, cfg.JWTSecret, -time.Minute)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ExpiredToken")
}

func TestJwtAuthMiddlewareValidToken(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg)
	token, err := GenerateToken(42, models.RoleAccounting, nil, cfg.JWTSecret, time.Hour)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), models.RoleAccounting)
}

func TestJwtAuthMiddlewarePropagatesCustomerID(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg)
	customerID := uint(7)
	token, err := GenerateToken(3, models.RoleCustomer, &customerID, cfg.JWTSecret, time.Hour)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customer_id":7`)
}

func TestRequirePermissionAllowsGrantedRole(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg, PermInvoiceCreate)
	token, err := GenerateToken(1, models.RoleAccounting, nil, cfg.JWTSecret, time.Hour)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionRejectsMissingGrant(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg, PermInvoiceCreate)
	for _, role := range []string{models.RoleManagement, models.RoleCustomer} {
		token, err := GenerateToken(1, role, nil, cfg.JWTSecret, time.Hour)
		assert.NoError(t, err)

		w := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)
	}
}

func TestRequirePermissionUnknownRole(t *testing.T) {
	cfg := testConfig()
	router := protectedRouter(cfg, PermInvoiceRead)
	token, err := GenerateToken(1, "INTERN", nil, cfg.JWTSecret, time.Hour)
	assert.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHasPermissionTable(t *testing.T) {
	tests := []struct {
		role string
		perm Permission
		want bool
	}{
		{models.RoleAdmin, PermMasterDataWrite, true},
		{models.RoleAccounting, PermMasterDataWrite, false},
		{models.RoleAccounting, PermPriceWrite, true},
		{models.RoleManagement, PermInvoiceRead, true},
		{models.RoleManagement, PermInvoiceCreate, false},
		{models.RoleCustomer, PermInvoiceReadOwn, true},
		{models.RoleCustomer, PermInvoiceRead, false},
		{models.RoleAdmin, PermInvoiceReadOwn, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPermission(tt.role, tt.perm), "%s / %s", tt.role, tt.perm)
	}
}
