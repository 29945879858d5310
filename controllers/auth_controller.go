package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"adboard/config"
	"adboard/middleware"
	"adboard/utils"
)

const adminTokenLifetime = 24 * time.Hour

// AuthController handles the single-admin login flow. Credentials come
// from configuration only; there is no user table.
type AuthController struct{}

// NewAuthController creates a new AuthController instance.
func NewAuthController() *AuthController {
	return &AuthController{}
}

// Login verifies the admin credentials and issues a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	cfg := config.Get()
	nameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUsername)) == 1
	if !nameOK || !utils.CheckPassword(cfg.AdminPasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(cfg.AdminUsername, adminTokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": token})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Status reports whether the presented token is a valid admin session.
// Public: an absent or invalid token is a normal "not logged in" answer.
func (a *AuthController) Status(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" || utils.IsTokenBlacklisted(token) {
		utils.Success(ctx, gin.H{"logged_in": false})
		return
	}
	claims, err := utils.ParseToken(token)
	if err != nil || !claims.Admin {
		utils.Success(ctx, gin.H{"logged_in": false})
		return
	}
	utils.Success(ctx, gin.H{"logged_in": true, "username": claims.Username})
}

// Me returns the authenticated admin identity.
func (a *AuthController) Me(ctx *gin.Context) {
	username, _ := ctx.Get(middleware.ContextUsernameKey)
	utils.Success(ctx, gin.H{"username": username})
}

func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
