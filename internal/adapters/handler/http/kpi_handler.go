package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type KPIHandler struct {
	svc        *services.KPIService
	defaultLoc *time.Location
}

func NewKPIHandler(svc *services.KPIService, defaultLoc *time.Location) *KPIHandler {
	registerValidators()
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &KPIHandler{svc: svc, defaultLoc: defaultLoc}
}

func (h *KPIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/kpis", h.List)

	habit := router.Group("/habits/:id")
	{
		habit.GET("/kpi", h.Get)
		habit.GET("/streaks", h.Streaks)
		habit.GET("/days", h.Days)
	}
}

func (h *KPIHandler) query(c *gin.Context) (domain.KPIQuery, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return domain.KPIQuery{}, false
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		bindError(c, err)
		return domain.KPIQuery{}, false
	}

	return domain.KPIQuery{HabitID: c.Param("id"), UserID: userID, Location: loc}, true
}

// Get godoc
// @Summary  KPI object of a habit
// @Tags     kpi
// @Produce  json
// @Param    id path  string true  "Habit ID"
// @Param    tz query string false "IANA timezone defining today"
// @Success  200 {object} domain.HabitKPI
// @Failure  403 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/kpi [get]
func (h *KPIHandler) Get(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	kpi, err := h.svc.GetKPI(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpi)
}

// List godoc
// @Summary  KPI objects of every active habit
// @Tags     kpi
// @Produce  json
// @Param    tz query string false "IANA timezone defining today"
// @Success  200 {array} domain.HabitKPI
// @Security BearerAuth
// @Router   /kpis [get]
func (h *KPIHandler) List(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	kpis, err := h.svc.ListKPIs(c.Request.Context(), q.UserID, q.Location)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpis)
}

// Streaks godoc
// @Summary  Every streak of a habit in chronological order
// @Tags     kpi
// @Produce  json
// @Param    id path  string true  "Habit ID"
// @Param    tz query string false "IANA timezone defining today"
// @Success  200 {array} streaks.Streak
// @Security BearerAuth
// @Router   /habits/{id}/streaks [get]
func (h *KPIHandler) Streaks(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	list, err := h.svc.GetStreaks(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Days godoc
// @Summary  Status of each day in a range
// @Tags     kpi
// @Produce  json
// @Param    id   path  string true  "Habit ID"
// @Param    from query string false "YYYY-MM-DD, defaults to 29 days before to"
// @Param    to   query string false "YYYY-MM-DD, defaults to today"
// @Param    tz   query string false "IANA timezone defining today"
// @Success  200 {array} streaks.DayStatus
// @Security BearerAuth
// @Router   /habits/{id}/days [get]
func (h *KPIHandler) Days(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	var r dateRangeQuery
	if err := c.ShouldBindQuery(&r); err != nil {
		bindError(c, err)
		return
	}

	days, err := h.svc.GetDays(c.Request.Context(), domain.DaysQuery{KPIQuery: q, From: r.From, To: r.To})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, days)
}
