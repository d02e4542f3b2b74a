package controller

import (
	"errors"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/service"
	"julekalender_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const adminTaskListLimit = 100

// AdminTaskController manages tasks, hints and media for admins.
type AdminTaskController struct {
	TaskService *service.TaskService
}

func NewAdminTaskController(taskService *service.TaskService) *AdminTaskController {
	return &AdminTaskController{TaskService: taskService}
}

func respondAdminError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTaskNotFound):
		util.Error(ctx, http.StatusNotFound, "task_not_found")
	case errors.Is(err, util.ErrTaskExists):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrTaskLocked):
		util.Error(ctx, http.StatusForbidden, "task_locked")
	case errors.Is(err, util.ErrTooManyHints):
		util.BadRequest(ctx, "too_many_hints")
	case errors.Is(err, util.ErrInvalidWindow),
		errors.Is(err, util.ErrHintNotFound),
		errors.Is(err, util.ErrInvalidMediaType),
		errors.Is(err, service.ErrInvalidPattern),
		errors.Is(err, service.ErrBlankAnswer):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrTransientFailure):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// dateParam reads :date and answers 400 when it is not YYYY-MM-DD.
func dateParam(ctx *gin.Context) (string, bool) {
	date, ok := util.ParseDate(ctx.Param("date"))
	if !ok {
		util.BadRequest(ctx, "date must be formatted as YYYY-MM-DD")
	}
	return date, ok
}

// ListTasks godoc
// @Summary List tasks, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Task}
// @Router /api/admin/tasks [get]
func (c *AdminTaskController) ListTasks(ctx *gin.Context) {
	tasks, err := c.TaskService.ListTasks(adminTaskListLimit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tasks": tasks})
}

// GetTask godoc
// @Summary Task with hints, media and status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=service.AdminTaskView}
// @Router /api/admin/tasks/{date} [get]
func (c *AdminTaskController) GetTask(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	view, err := c.TaskService.AdminView(date)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// CreateTask godoc
// @Summary Create the task for a date
// @Description Answers are trimmed and sealed before storage. Hours default to 9-23.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Param body body service.CreateTaskRequest true "task"
// @Success 201 {object} util.Response{data=model.Task}
// @Failure 409 {object} util.Response "a task already exists for this date"
// @Router /api/admin/tasks/{date} [post]
func (c *AdminTaskController) CreateTask(ctx *gin.Context) {
	admin := util.GetUserFromContext(ctx)
	if admin == nil {
		util.Unauthorized(ctx)
		return
	}
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	var req service.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.CreateTask(admin.UserID, date, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, task)
}

// UpdateTask godoc
// @Summary Change a task that has not opened yet
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Param body body service.UpdateTaskRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.Task}
// @Failure 403 {object} util.Response "task_locked"
// @Router /api/admin/tasks/{date} [patch]
func (c *AdminTaskController) UpdateTask(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.UpdateTask(date, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, task)
}

// DeleteTask godoc
// @Summary Delete a task that has not opened yet
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "task_locked"
// @Router /api/admin/tasks/{date} [delete]
func (c *AdminTaskController) DeleteTask(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	if err := c.TaskService.DeleteTask(ctx.Request.Context(), date); err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListHints godoc
// @Summary Hints of a task in order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=[]model.TaskHint}
// @Router /api/admin/tasks/{date}/hints [get]
func (c *AdminTaskController) ListHints(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	hints, err := c.TaskService.ListHints(date)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hints": hints})
}

type AddHintRequest struct {
	Info string `json:"info" binding:"required"`
}

// AddHint godoc
// @Summary Append the next hint
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Param body body AddHintRequest true "hint"
// @Success 201 {object} util.Response{data=model.TaskHint}
// @Failure 400 {object} util.Response "too_many_hints"
// @Router /api/admin/tasks/{date}/hints [post]
func (c *AdminTaskController) AddHint(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	var req AddHintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	hint, err := c.TaskService.AddHint(date, req.Info)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, hint)
}

// UploadMedia godoc
// @Summary Attach media to a task or one of its hints
// @Description hint_number 0 attaches to the task itself. png, jpeg, mp3, mp4 and markdown only.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Param file formData file true "media"
// @Param hint_number formData int false "hint number, 0 for the task"
// @Param info formData string false "caption"
// @Success 201 {object} util.Response{data=model.TaskMedia}
// @Router /api/admin/tasks/{date}/media [post]
func (c *AdminTaskController) UploadMedia(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	hintNumber := 0
	if raw := ctx.PostForm("hint_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > model.MaxHints {
			util.BadRequest(ctx, "hint_number must be within 0-5")
			return
		}
		hintNumber = n
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > util.MaxUploadSize {
		util.Error(ctx, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	media, err := c.TaskService.AddMedia(ctx.Request.Context(), date, hintNumber, ctx.PostForm("info"), file.Filename, src, file.Size)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, media)
}

// GetResults godoc
// @Summary Every player's progress on a task
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=[]model.TaskResult}
// @Router /api/admin/tasks/{date}/results [get]
func (c *AdminTaskController) GetResults(ctx *gin.Context) {
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	results, err := c.TaskService.TaskResults(date)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"results": results})
}
