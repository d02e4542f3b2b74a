package controller

import (
	"errors"
	"julekalender_backend/internal/service"
	"julekalender_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLeaderboardLimit = 100
	maxLeaderboardLimit     = 500
)

type UserController struct {
	UserService *service.UserService
	TaskService *service.TaskService
}

func NewUserController(userService *service.UserService, taskService *service.TaskService) *UserController {
	return &UserController{
		UserService: userService,
		TaskService: taskService,
	}
}

// GetUser godoc
// @Summary Current user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/user [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserService.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary Delete the current account and its progress
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/user [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.UserService.DeleteAccount(claims.UserID); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetResults godoc
// @Summary The caller's most recent task results
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TaskResult}
// @Router /api/user/results [get]
func (c *UserController) GetResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.UserService.Results(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"results": results})
}

// GetTodayResult godoc
// @Summary The caller's progress on today's task
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.TaskResult}
// @Failure 403 {object} util.Response "task_not_open"
// @Failure 404 {object} util.Response "task_not_found"
// @Router /api/user/results/today [get]
func (c *UserController) GetTodayResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.TaskService.GetVisibleTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	result, err := c.UserService.TodayResult(claims.UserID, task)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetLeaderboard godoc
// @Summary Users ranked by total score
// @Tags user
// @Produce json
// @Param limit query int false "max rows (default 100)"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *UserController) GetLeaderboard(ctx *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			util.BadRequest(ctx, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := c.UserService.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"leaderboard": entries})
}
