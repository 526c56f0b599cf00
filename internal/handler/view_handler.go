package handler

import (
	"log/slog"
	"net/http"
	"time"

	"planner/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ViewHandler struct {
	base
	now func() time.Time
}

func NewViewHandler(sessions Sessions, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{base: newBase(sessions, logger), now: time.Now}
}

type viewQuery struct {
	Filter   string `form:"filter" binding:"omitempty,oneof=all active completed"`
	Category string `form:"category" binding:"omitempty,uuid"`
	Search   string `form:"q"`
	Month    string `form:"month"`
	Week     string `form:"week"`
}

func (q viewQuery) filter() view.Filter {
	f := view.Filter{Status: view.StatusFilter(q.Filter), Search: q.Search}
	if f.Status == "" {
		f.Status = view.FilterAll
	}
	if id, err := uuid.Parse(q.Category); err == nil {
		f.CategoryID = &id
	}
	return f
}

// config builds the view config for mode from the query string.
func (h *ViewHandler) config(c *gin.Context, mode view.Mode) (view.Config, bool) {
	var q viewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return nil, false
	}
	now := h.now()

	switch mode {
	case view.ModeBoard:
		return view.BoardConfig{Filter: q.filter()}, true
	case view.ModeCalendar:
		month := now
		if q.Month != "" {
			t, err := time.ParseInLocation("2006-01", q.Month, now.Location())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "month must look like 2006-01"})
				return nil, false
			}
			month = t
		}
		return view.CalendarConfig{Filter: q.filter(), Month: month}, true
	case view.ModePlanner:
		week := now
		if q.Week != "" {
			t, err := time.ParseInLocation(time.DateOnly, q.Week, now.Location())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "week must look like 2006-01-02"})
				return nil, false
			}
			week = t
		}
		return view.PlannerConfig{Filter: q.filter(), Week: week, Today: now}, true
	}
	return view.ListConfig{Filter: q.filter()}, true
}

func (h *ViewHandler) render(mode view.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.current(c)
		if !ok {
			return
		}
		cfg, ok := h.config(c, mode)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, view.Project(s.Store.Tasks(), cfg))
	}
}

// List godoc
// @Summary   List view with status, category and search filters
// @Tags      Views
// @Security  BearerAuth
// @Produce   json
// @Param     filter   query string false "all, active or completed"
// @Param     category query string false "Category ID"
// @Param     q        query string false "Title search"
// @Success   200 {object} view.ListView
// @Router    /views/list [get]
func (h *ViewHandler) List(c *gin.Context) { h.render(view.ModeList)(c) }

// Board godoc
// @Summary   Tasks grouped into todo, in-progress and done
// @Tags      Views
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} view.BoardView
// @Router    /views/board [get]
func (h *ViewHandler) Board(c *gin.Context) { h.render(view.ModeBoard)(c) }

// Calendar godoc
// @Summary   Month grid of tasks by due day
// @Tags      Views
// @Security  BearerAuth
// @Produce   json
// @Param     month query string false "Month as 2006-01"
// @Success   200 {object} view.CalendarView
// @Router    /views/calendar [get]
func (h *ViewHandler) Calendar(c *gin.Context) { h.render(view.ModeCalendar)(c) }

// Planner godoc
// @Summary   Monday-first week with weekly and today stats
// @Tags      Views
// @Security  BearerAuth
// @Produce   json
// @Param     week query string false "Any day of the week as 2006-01-02"
// @Success   200 {object} view.PlannerView
// @Router    /views/planner [get]
func (h *ViewHandler) Planner(c *gin.Context) { h.render(view.ModePlanner)(c) }
