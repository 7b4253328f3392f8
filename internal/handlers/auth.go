package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/config"
	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/services"
)

// IdentityVerifier resolves the external subject a request was made as.
// Identity is fully delegated: this service never issues or stores
// credentials.
type IdentityVerifier interface {
	Verify(c *gin.Context) (externalID string, err error)
}

// CasdoorVerifier validates bearer tokens against the identity provider.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg config.CasdoorConfig) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorVerifier{client: client}
}

func (v *CasdoorVerifier) Verify(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return "", fmt.Errorf("invalid authorization header format")
	}

	claims, err := v.client.ParseJwtToken(tokenParts[1])
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims.Id == "" {
		return "", fmt.Errorf("token carries no subject")
	}

	return claims.Id, nil
}

// HeaderVerifier trusts the X-External-Id header. Only valid behind a
// gateway that authenticates upstream.
type HeaderVerifier struct{}

func (HeaderVerifier) Verify(c *gin.Context) (string, error) {
	externalID := strings.TrimSpace(c.GetHeader("X-External-Id"))
	if externalID == "" {
		return "", fmt.Errorf("X-External-Id header missing")
	}
	return externalID, nil
}

// AuthMiddleware verifies identity and resolves the local user record.
type AuthMiddleware struct {
	verifier    IdentityVerifier
	userService services.UserService
}

func NewAuthMiddleware(verifier IdentityVerifier, userService services.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:    verifier,
		userService: userService,
	}
}

// RequireAuth rejects requests without a verifiable identity or without a
// registered profile for that identity.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, err := am.verifier.Verify(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		user, err := am.userService.GetByExternalID(c.Request.Context(), externalID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "No profile registered for this identity",
			})
			c.Abort()
			return
		}

		if user.IsBanned {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Account is banned",
			})
			c.Abort()
			return
		}

		setActor(c, user)
		c.Next()
	}
}

// RequireIdentity verifies the external identity without requiring a local
// profile. Registration runs behind this: the subject exists upstream but has
// no user row yet.
func (am *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, err := am.verifier.Verify(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("external_id", externalID)

		// Resolve the actor too when a profile already exists.
		if user, err := am.userService.GetByExternalID(c.Request.Context(), externalID); err == nil {
			setActor(c, user)
		}

		c.Next()
	}
}

// OptionalAuth resolves the actor when credentials are present, but lets
// anonymous requests through. Banned users are treated as anonymous.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID, err := am.verifier.Verify(c)
		if err != nil {
			c.Next()
			return
		}

		user, err := am.userService.GetByExternalID(c.Request.Context(), externalID)
		if err == nil && !user.IsBanned {
			setActor(c, user)
		}

		c.Next()
	}
}

// RequireRole checks the resolved actor against the required roles. Admins
// always pass.
func (am *AuthMiddleware) RequireRole(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found in context",
			})
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if actor.Role == requiredRole || actor.Role == models.RoleAdmin {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func setActor(c *gin.Context, user *models.User) {
	c.Set("actor", user)
	c.Set("user_id", user.ID)
	c.Set("user_role", user.Role)
	c.Set("external_id", user.ExternalID)
}

// GetActor extracts the resolved user from the Gin context.
func GetActor(c *gin.Context) (*models.User, error) {
	v, exists := c.Get("actor")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	user, ok := v.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return user, nil
}

// actorOrNil is for endpoints behind OptionalAuth.
func actorOrNil(c *gin.Context) *models.User {
	actor, err := GetActor(c)
	if err != nil {
		return nil
	}
	return actor
}
