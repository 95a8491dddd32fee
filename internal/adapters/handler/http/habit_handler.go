package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type HabitHandler struct {
	svc        *services.HabitService
	defaultLoc *time.Location
}

func NewHabitHandler(svc *services.HabitService, defaultLoc *time.Location) *HabitHandler {
	registerValidators()
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &HabitHandler{
		svc:        svc,
		defaultLoc: defaultLoc,
	}
}

type createHabitRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Frequency   int    `json:"frequency" binding:"omitempty,min=1"`
	Range       int    `json:"range" binding:"omitempty,min=1"`
	CreatedDate string `json:"created_date" binding:"omitempty,calendar_date"`
}

type updateHabitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Frequency   int    `json:"frequency" binding:"omitempty,min=1"`
	Range       int    `json:"range" binding:"omitempty,min=1"`
	SortOrder   *int   `json:"sort_order"`
	Version     int    `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/colors/recent", h.RecentColors)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
		habits.DELETE("/:id", h.Delete)
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user context missing"})
	}
	return userID, ok
}

// Create godoc
// @Summary      Create a habit
// @Tags         habits
// @Accept       json
// @Produce      json
// @Param        tz    query string             false "IANA timezone used for the default created_date"
// @Param        habit body  createHabitRequest true  "Habit definition"
// @Success      201   {object} domain.Habit
// @Failure      400   {object} map[string]string
// @Security     BearerAuth
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		bindError(c, err)
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Frequency:   req.Frequency,
		Range:       req.Range,
		CreatedDate: req.CreatedDate,
		Location:    loc,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary  List active habits
// @Tags     habits
// @Produce  json
// @Success  200 {array} domain.Habit
// @Security BearerAuth
// @Router   /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Sync godoc
// @Summary  Habits changed since last_sync, soft-deleted ones included
// @Tags     habits
// @Produce  json
// @Param    last_sync query string false "RFC3339 timestamp"
// @Success  200 {object} map[string]interface{}
// @Security BearerAuth
// @Router   /habits/sync [get]
func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_sync format, use RFC3339"})
			return
		}
		lastSync = parsed
	}

	// Sampled before the read; clients send it back as last_sync.
	timestamp := time.Now().UTC()

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": timestamp,
	})
}

// RecentColors godoc
// @Summary  Most recently used habit colors
// @Tags     habits
// @Produce  json
// @Success  200 {object} map[string][]string
// @Security BearerAuth
// @Router   /habits/colors/recent [get]
func (h *HabitHandler) RecentColors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"colors": h.svc.RecentColors()})
}

// Update godoc
// @Summary  Update a habit; blank fields keep their value
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    id    path string             true "Habit ID"
// @Param    habit body updateHabitRequest true "Changes"
// @Success  200 {object} domain.Habit
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Frequency:   req.Frequency,
		Range:       req.Range,
		SortOrder:   req.SortOrder,
		Version:     req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// Delete godoc
// @Summary  Soft-delete a habit
// @Tags     habits
// @Param    id path string true "Habit ID"
// @Success  204
// @Security BearerAuth
// @Router   /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
