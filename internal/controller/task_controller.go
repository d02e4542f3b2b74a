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

// TaskController serves today's task to players.
type TaskController struct {
	TaskService    *service.TaskService
	AttemptService *service.AttemptService
	HintService    *service.HintService
	Calendar       *service.Calendar
}

func NewTaskController(
	taskService *service.TaskService,
	attemptService *service.AttemptService,
	hintService *service.HintService,
	calendar *service.Calendar,
) *TaskController {
	return &TaskController{
		TaskService:    taskService,
		AttemptService: attemptService,
		HintService:    hintService,
		Calendar:       calendar,
	}
}

// respondTaskError maps service errors of the task endpoints to replies.
// Anything unknown is logged and answered with 500.
func respondTaskError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTaskNotFound):
		util.Error(ctx, http.StatusNotFound, "task_not_found")
	case errors.Is(err, util.ErrTaskNotOpen):
		util.Error(ctx, http.StatusForbidden, "task_not_open")
	case errors.Is(err, util.ErrNoHintsLeft):
		util.BadRequest(ctx, "no_hints_left")
	case errors.Is(err, util.ErrAlreadySolved):
		util.Conflict(ctx, "already_solved")
	case errors.Is(err, util.ErrTransientFailure):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetTask godoc
// @Summary Today's task
// @Description Prompt, author, window and status. The explanation and video appear once expired.
// @Tags task
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.TaskView}
// @Failure 403 {object} util.Response "task_not_open"
// @Failure 404 {object} util.Response "task_not_found"
// @Router /api/task [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	task, err := c.TaskService.GetVisibleTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}
	util.Success(ctx, c.TaskService.View(task))
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required,max=500"`
}

// SubmitAnswer godoc
// @Summary Submit an answer to today's task
// @Tags task
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitAnswerRequest true "answer"
// @Success 200 {object} util.Response{data=service.AnswerResult} "correct, incorrect or solved"
// @Failure 400 {object} util.Response{data=service.AnswerResult} "duplicate"
// @Failure 403 {object} util.Response "task_not_open"
// @Failure 429 {object} util.Response{data=service.AnswerResult} "no_attempts"
// @Router /api/task/answer [post]
func (c *TaskController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	task, err := c.TaskService.GetOpenTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	result, err := c.AttemptService.Evaluate(ctx.Request.Context(), user.UserID, task, req.Answer)
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	switch result.Outcome {
	case model.OutcomeCorrect, model.OutcomeIncorrect, model.OutcomeAlreadySolved:
		util.Success(ctx, result)
	case model.OutcomeDuplicate:
		util.ErrorWithData(ctx, http.StatusBadRequest, result.Outcome.String(), result)
	case model.OutcomeNoAttemptsLeft:
		if result.AttemptsReset != nil {
			wait := util.RetryAfterSeconds(c.Calendar.Now(), *result.AttemptsReset)
			ctx.Header("Retry-After", strconv.Itoa(wait))
		}
		util.ErrorWithData(ctx, http.StatusTooManyRequests, result.Outcome.String(), result)
	case model.OutcomePending:
		util.LogInternalError(ctx, errors.New("answer left unjudged"))
	}
}

// GetHints godoc
// @Summary Hints unlocked by the caller
// @Description Visible hints with their media, plus media attached to the task itself.
// @Tags task
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.HintView}
// @Router /api/task/hints [get]
func (c *TaskController) GetHints(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.TaskService.GetVisibleTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	view, err := c.HintService.Visible(user.UserID, task)
	if err != nil {
		respondTaskError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UnlockHint godoc
// @Summary Unlock the next hint
// @Tags task
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.UnlockResult}
// @Failure 400 {object} util.Response "no_hints_left"
// @Failure 403 {object} util.Response "task_not_open"
// @Failure 409 {object} util.Response "already_solved"
// @Router /api/task/hints/unlock [post]
func (c *TaskController) UnlockHint(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.TaskService.GetOpenTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	result, err := c.HintService.Unlock(ctx.Request.Context(), user.UserID, task)
	if err != nil {
		respondTaskError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetAttempts godoc
// @Summary The caller's answers to today's task
// @Tags task
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TaskAttempt}
// @Router /api/task/attempts [get]
func (c *TaskController) GetAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.TaskService.GetVisibleTaskForToday()
	if err != nil {
		respondTaskError(ctx, err)
		return
	}

	attempts, err := c.AttemptService.Attempts(user.UserID, task)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempts": attempts})
}
