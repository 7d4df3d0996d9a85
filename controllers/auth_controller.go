package controllers

import (
	"context"
	"errors"
	"net/http"

	"checkout-service/apperrors"
	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IAuthService interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.PublicUser, error)
}

type AuthController struct {
	service IAuthService
	logger  *zap.Logger
}

func NewAuthController(service IAuthService, logger *zap.Logger) *AuthController {
	return &AuthController{service: service, logger: logger}
}

func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome de usuário (4 a 30 caracteres) e senha (mínimo 6) são obrigatórios"})
		return
	}

	result, err := ac.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			ac.logger.Error("Login failed", zap.String("username", req.Username), zap.Error(err))
		}
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"user":         result.User,
	})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token é obrigatório"})
		return
	}

	accessToken, err := ac.service.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": accessToken})
}

// CreateAdmin is only routed outside production.
func (ac *AuthController) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.service.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (ac *AuthController) Status(c *gin.Context) {
	claims := middleware.Claims(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       claims["sub"],
			"username": claims["username"],
			"role":     claims["role"],
		},
	})
}

func (ac *AuthController) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Bem-vindo ao painel admin!",
		"user":    middleware.Claims(c),
	})
}
