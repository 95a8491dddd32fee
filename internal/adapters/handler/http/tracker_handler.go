package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type TrackerHandler struct {
	svc *services.TrackerService
}

func NewTrackerHandler(svc *services.TrackerService) *TrackerHandler {
	registerValidators()
	return &TrackerHandler{svc: svc}
}

type trackerURI struct {
	HabitID string `uri:"id" binding:"required"`
	Date    string `uri:"date" binding:"required,calendar_date"`
}

type logTrackerRequest struct {
	Completed bool   `json:"completed"`
	Skipped   bool   `json:"skipped"`
	Note      string `json:"note"`
}

type dateRangeQuery struct {
	From string `form:"from" binding:"omitempty,calendar_date"`
	To   string `form:"to" binding:"omitempty,calendar_date"`
}

func (h *TrackerHandler) RegisterRoutes(router *gin.RouterGroup) {
	trackers := router.Group("/habits/:id/trackers")
	{
		trackers.GET("", h.List)
		trackers.PUT("/:date", h.Log)
		trackers.DELETE("/:date", h.Delete)
	}
}

// Log godoc
// @Summary  Set the status of a habit for one day
// @Tags     trackers
// @Accept   json
// @Produce  json
// @Param    id      path string            true "Habit ID"
// @Param    date    path string            true "YYYY-MM-DD"
// @Param    tracker body logTrackerRequest true "Status"
// @Success  200 {object} domain.Tracker
// @Failure  400 {object} map[string]string
// @Failure  403 {object} map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/trackers/{date} [put]
func (h *TrackerHandler) Log(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri trackerURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	var req logTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tracker, err := h.svc.Log(c.Request.Context(), services.LogTrackerInput{
		HabitID:   uri.HabitID,
		UserID:    userID,
		Dated:     uri.Date,
		Completed: req.Completed,
		Skipped:   req.Skipped,
		Note:      req.Note,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tracker)
}

// List godoc
// @Summary  Trackers of a habit, oldest first
// @Tags     trackers
// @Produce  json
// @Param    id   path  string true  "Habit ID"
// @Param    from query string false "YYYY-MM-DD"
// @Param    to   query string false "YYYY-MM-DD"
// @Success  200 {array} domain.Tracker
// @Security BearerAuth
// @Router   /habits/{id}/trackers [get]
func (h *TrackerHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	trackers, err := h.svc.List(c.Request.Context(), services.ListTrackersInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		From:    q.From,
		To:      q.To,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, trackers)
}

func (h *TrackerHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var uri trackerURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), uri.HabitID, userID, uri.Date); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
