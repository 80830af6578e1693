package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yourusername/billing-backoffice/config"
	"github.com/yourusername/billing-backoffice/models"
)

// Claims represents the JWT claims
type Claims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	CustomerID *uint  `json:"customer_id,omitempty"` // set for portal accounts
	jwt.RegisteredClaims
}

// Permission names an operation a principal may perform. Every entry point
// into the services is guarded by exactly one of these instead of ad-hoc
// role lists repeated per route.
type Permission string

const (
	PermInvoiceCreate       Permission = "invoice:create"
	PermInvoiceUpdate       Permission = "invoice:update"
	PermInvoiceChangeStatus Permission = "invoice:change_status"
	PermInvoiceRead         Permission = "invoice:read"
	PermInvoiceReadOwn      Permission = "invoice:read_own"
	PermNoteWrite           Permission = "note:write"
	PermPriceWrite          Permission = "price:write"
	PermPriceRead           Permission = "price:read"
	PermMasterDataWrite     Permission = "masterdata:write"
	PermMasterDataRead      Permission = "masterdata:read"
)

var rolePermissions = map[string][]Permission{
	models.RoleAdmin: {
		PermInvoiceCreate, PermInvoiceUpdate, PermInvoiceChangeStatus, PermInvoiceRead,
		PermNoteWrite, PermPriceWrite, PermPriceRead, PermMasterDataWrite, PermMasterDataRead,
	},
	models.RoleAccounting: {
		PermInvoiceCreate, PermInvoiceUpdate, PermInvoiceChangeStatus, PermInvoiceRead,
		PermNoteWrite, PermPriceWrite, PermPriceRead, PermMasterDataRead,
	},
	models.RoleManagement: {
		PermInvoiceRead, PermPriceRead, PermMasterDataRead,
	},
	models.RoleCustomer: {
		PermInvoiceReadOwn,
	},
}

// HasPermission reports whether a role grants the permission.
func HasPermission(role string, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// GenerateToken creates a new JWT token for a user
func GenerateToken(userID uint, role string, customerID *uint, secret string, expiry time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiry)
	claims := &Claims{
		UserID:     userID,
		Role:       role,
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JwtAuthMiddleware validates the JWT token and sets user info in the context
func JwtAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired", "code": "ExpiredToken"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "InvalidToken"})
			}
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "InvalidToken"})
			c.Abort()
			return
		}

		// Set user information in context
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		if claims.CustomerID != nil {
			c.Set("customerID", *claims.CustomerID)
		}

		c.Next()
	}
}

// RequirePermission checks the caller's role against the capability table
// for one named operation.
func RequirePermission(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User role not found in context"})
			c.Abort()
			return
		}

		roleStr, ok := userRole.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid role type in context"})
			c.Abort()
			return
		}

		if !HasPermission(roleStr, perm) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
