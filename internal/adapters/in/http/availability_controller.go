package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/in"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
	"github.com/suchimauz/hms-availability-resolver/internal/core/services"
	"github.com/suchimauz/hms-availability-resolver/internal/utils"
)

type AvailabilityController struct {
	useCase in.AvailabilityUseCase
	cfg     *config.Config
}

func NewAvailabilityController(useCase in.AvailabilityUseCase, cfg *config.Config) *AvailabilityController {
	return &AvailabilityController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *AvailabilityController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/availability", c.listAvailabilities)
		api.GET("/availability/calendar", c.getCalendar)
		api.GET("/availability/slots", c.getSlots)
		api.POST("/availability/slots/preload", c.preloadSlots)
		api.POST("/doctors/:doctorId/availability", c.createAvailability)
		api.PUT("/availability/:id", c.updateAvailability)
		api.DELETE("/availability/:id", c.deleteAvailability)
	}
}

type PreloadSlotsRequest struct {
	Date      string   `json:"date" binding:"required"`
	DoctorIDs []string `json:"doctorIds" binding:"required,min=1"`
}

type MutateAvailabilityRequest struct {
	DoctorID string `json:"doctorId"`
	out.AvailabilityPayload
}

func (c *AvailabilityController) listAvailabilities(ctx *gin.Context) {
	filters := out.AvailabilityFilters{
		DoctorID: ctx.Query("doctorId"),
		Search:   ctx.Query("search"),
	}

	records, err := c.useCase.ListAvailabilities(ctx.Request.Context(), filters)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"availabilities": records})
}

func (c *AvailabilityController) getCalendar(ctx *gin.Context) {
	// Якорь окна, по умолчанию сегодня
	anchor := services.Today()
	if anchorParam := ctx.Query("anchor"); anchorParam != "" {
		parsed, err := utils.ParseDate(anchorParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid anchor date format"})
			return
		}
		anchor = parsed
	}

	days := c.cfg.Calendar.WindowDays
	if daysParam := ctx.Query("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days value"})
			return
		}
		days = parsed
	}

	switch ctx.Query("nav") {
	case "next":
		anchor = services.Advance(anchor, days)
	case "prev":
		anchor = services.Retreat(anchor, days)
	case "today":
		anchor = services.Today()
	}

	filters := out.AvailabilityFilters{
		DoctorID: ctx.Query("doctorId"),
		Search:   ctx.Query("search"),
	}

	calendar, err := c.useCase.BuildCalendar(ctx.Request.Context(), anchor, days, filters)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"anchor": anchor.Format("2006-01-02"),
		"days":   days,
		"window": calendar,
	})
}

func (c *AvailabilityController) getSlots(ctx *gin.Context) {
	date, err := utils.ParseDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	doctorID := ctx.Query("doctorId")
	if doctorID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "doctorId is required"})
		return
	}

	entry, err := c.useCase.GetSlots(ctx.Request.Context(), date, doctorID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

func (c *AvailabilityController) preloadSlots(ctx *gin.Context) {
	var req PreloadSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	if err := c.useCase.PreloadForDate(ctx.Request.Context(), date, req.DoctorIDs); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":         date.Format("2006-01-02"),
		"doctorsCount": len(req.DoctorIDs),
	})
}

func (c *AvailabilityController) createAvailability(ctx *gin.Context) {
	doctorID := ctx.Param("doctorId")

	var req MutateAvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := c.useCase.CreateAvailability(ctx.Request.Context(), doctorID, req.AvailabilityPayload)
	if err != nil {
		// Дубликат расписания - отказ до обращения к бэкенду
		if errors.Is(err, services.ErrDuplicateSchedule) {
			ctx.JSON(http.StatusConflict, gin.H{
				"error":    "Schedule already exists",
				"conflict": record,
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

func (c *AvailabilityController) updateAvailability(ctx *gin.Context) {
	recordID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability ID format"})
		return
	}

	var req MutateAvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Без doctorId не сможем инвалидировать кэш слотов врача
	if req.DoctorID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "doctorId is required"})
		return
	}

	record, err := c.useCase.UpdateAvailability(ctx.Request.Context(), recordID, req.DoctorID, req.AvailabilityPayload)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, record)
}

func (c *AvailabilityController) deleteAvailability(ctx *gin.Context) {
	recordID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability ID format"})
		return
	}

	doctorID := ctx.Query("doctorId")
	if doctorID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "doctorId is required"})
		return
	}

	if err := c.useCase.DeleteAvailability(ctx.Request.Context(), recordID, doctorID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": recordID})
}

func (c *AvailabilityController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
