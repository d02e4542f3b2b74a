package controller

import (
	"errors"
	"julekalender_backend/internal/service"
	"julekalender_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterRequest true "registration"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "email or username taken"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEmailRegistered), errors.Is(err, util.ErrUsernameTaken):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.LoginRequest true "credentials"
// @Success 200 {object} util.Response{data=service.LoginResponse}
// @Failure 401 {object} util.Response
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AuthService.Login(req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Error(ctx, http.StatusUnauthorized, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}
