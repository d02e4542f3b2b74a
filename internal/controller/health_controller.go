package controller

import (
	"julekalender_backend/internal/service"
	"julekalender_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB       *gorm.DB
	Calendar *service.Calendar
}

func NewHealthController(db *gorm.DB, calendar *service.Calendar) *HealthController {
	return &HealthController{DB: db, Calendar: calendar}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
	})
}

// @Summary Server time in the calendar zone
// @Description Clients count down to the open hour from this.
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/time [get]
func (c *HealthController) ServerTime(ctx *gin.Context) {
	now := c.Calendar.Now().In(c.Calendar.Location)
	util.Success(ctx, gin.H{
		"time":     now.Format(time.RFC3339),
		"date":     now.Format(util.DateFormat),
		"timezone": c.Calendar.Location.String(),
	})
}
