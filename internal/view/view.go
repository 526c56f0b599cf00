// Package view derives what each display mode shows from the task list.
// Nothing here mutates its input.
package view

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"

	"planner/internal/model"
)

type Mode string

const (
	ModeList     Mode = "list"
	ModeBoard    Mode = "board"
	ModeCalendar Mode = "calendar"
	ModePlanner  Mode = "planner"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// Config selects a mode and carries that mode's settings.
type Config interface {
	Mode() Mode
}

// Projection is the output of Project for one mode.
type Projection interface {
	Mode() Mode
}

// Filter narrows the task list. A nil CategoryID means every category.
type Filter struct {
	Status     StatusFilter
	CategoryID *uuid.UUID
	Search     string
}

type ListConfig struct{ Filter }

type BoardConfig struct{ Filter }

// CalendarConfig shows the month containing Month.
type CalendarConfig struct {
	Filter
	Month time.Time
}

// PlannerConfig shows the Monday-start week containing Week. Today anchors
// the today stats.
type PlannerConfig struct {
	Filter
	Week  time.Time
	Today time.Time
}

func (ListConfig) Mode() Mode     { return ModeList }
func (BoardConfig) Mode() Mode    { return ModeBoard }
func (CalendarConfig) Mode() Mode { return ModeCalendar }
func (PlannerConfig) Mode() Mode  { return ModePlanner }

// Project dispatches to the projection of cfg's mode. It returns nil for an
// unknown config type.
func Project(tasks []model.Task, cfg Config) Projection {
	switch c := cfg.(type) {
	case ListConfig:
		return List(tasks, c)
	case BoardConfig:
		return Board(tasks, c)
	case CalendarConfig:
		return Calendar(tasks, c)
	case PlannerConfig:
		return Planner(tasks, c)
	}
	return nil
}

// Counts are the badge numbers next to the status filter. They always cover
// the whole task list.
type Counts struct {
	All       int `json:"all"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	// Progress is Completed/All as a rounded percentage.
	Progress int `json:"progress"`
}

func CountTasks(tasks []model.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	c.Progress = percent(c.Completed, c.All)
	return c
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Apply returns the tasks matching f in their original order.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch f.Status {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type ListView struct {
	Tasks  []model.Task `json:"tasks"`
	Counts Counts       `json:"counts"`
}

func (ListView) Mode() Mode { return ModeList }

func List(tasks []model.Task, cfg ListConfig) ListView {
	return ListView{Tasks: cfg.Apply(tasks), Counts: CountTasks(tasks)}
}

type Column struct {
	Status model.Status `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

type BoardView struct {
	Columns []Column `json:"columns"`
	Counts  Counts   `json:"counts"`
}

func (BoardView) Mode() Mode { return ModeBoard }

// Board buckets tasks into todo, in-progress and done. A completed task is
// always shown as done whatever its stored status.
func Board(tasks []model.Task, cfg BoardConfig) BoardView {
	columns := []Column{
		{Status: model.StatusTodo, Tasks: []model.Task{}},
		{Status: model.StatusInProgress, Tasks: []model.Task{}},
		{Status: model.StatusDone, Tasks: []model.Task{}},
	}
	for _, t := range cfg.Apply(tasks) {
		i := 0
		switch {
		case t.Completed || t.Status == model.StatusDone:
			i = 2
		case t.Status == model.StatusInProgress:
			i = 1
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return BoardView{Columns: columns, Counts: CountTasks(tasks)}
}

type Day struct {
	Date  time.Time    `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

type CalendarView struct {
	Month time.Time `json:"month"`
	// LeadingBlanks is the number of empty cells before the first day in a
	// Sunday-first grid.
	LeadingBlanks int   `json:"leading_blanks"`
	Days          []Day `json:"days"`
}

func (CalendarView) Mode() Mode { return ModeCalendar }

// Calendar lists every day of the month with the tasks due that day. Tasks
// without a due date are left out.
func Calendar(tasks []model.Task, cfg CalendarConfig) CalendarView {
	ref := cfg.Month
	if ref.IsZero() {
		ref = time.Now()
	}
	first := now.With(ref).BeginningOfMonth()
	last := now.With(ref).EndOfMonth()

	byDay := groupByDay(cfg.Apply(tasks), ref.Location())
	var days []Day
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{Date: d, Tasks: nonNil(byDay[dayKey(d)])})
	}
	return CalendarView{Month: first, LeadingBlanks: int(first.Weekday()), Days: days}
}

type WeekStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"`
	// Trend is completed this week minus completed the week before.
	Trend int `json:"trend"`
}

type TodayStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	HighPriority int `json:"high_priority"`
}

type PlannerView struct {
	WeekStart time.Time    `json:"week_start"`
	Days      []Day        `json:"days"`
	Week      WeekStats    `json:"week"`
	Today     TodayStats   `json:"today"`
	DueToday  []model.Task `json:"due_today"`
	Counts    Counts       `json:"counts"`
}

func (PlannerView) Mode() Mode { return ModePlanner }

var mondayFirst = &now.Config{WeekStartDay: time.Monday}

// Planner lays out the Monday-first week around cfg.Week with weekly and
// today stats.
func Planner(tasks []model.Task, cfg PlannerConfig) PlannerView {
	ref := cfg.Week
	if ref.IsZero() {
		ref = time.Now()
	}
	today := cfg.Today
	if today.IsZero() {
		today = ref
	}
	loc := ref.Location()
	filtered := cfg.Apply(tasks)

	start := mondayFirst.With(ref).BeginningOfWeek()
	byDay := groupByDay(filtered, loc)
	days := make([]Day, 7)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = Day{Date: d, Tasks: nonNil(byDay[dayKey(d)])}
	}

	var week WeekStats
	prevStart := start.AddDate(0, 0, -7)
	prevCompleted := 0
	for _, t := range filtered {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.In(loc)
		switch {
		case within(due, start, 7):
			week.Total++
			if t.Completed {
				week.Completed++
			}
		case within(due, prevStart, 7):
			if t.Completed {
				prevCompleted++
			}
		}
	}
	week.Pending = week.Total - week.Completed
	week.CompletionRate = percent(week.Completed, week.Total)
	week.Trend = week.Completed - prevCompleted

	var todayStats TodayStats
	dueToday := []model.Task{}
	todayKey := dayKey(today.In(loc))
	for _, t := range byDay[todayKey] {
		todayStats.Total++
		if t.Completed {
			todayStats.Completed++
			continue
		}
		if t.Priority == model.PriorityHigh {
			todayStats.HighPriority++
		}
		dueToday = append(dueToday, t)
	}

	return PlannerView{
		WeekStart: start,
		Days:      days,
		Week:      week,
		Today:     todayStats,
		DueToday:  dueToday,
		Counts:    CountTasks(tasks),
	}
}

func within(t, start time.Time, days int) bool {
	return !t.Before(start) && t.Before(start.AddDate(0, 0, days))
}

type dayID struct {
	year  int
	month time.Month
	day   int
}

func dayKey(t time.Time) dayID {
	y, m, d := t.Date()
	return dayID{y, m, d}
}

func groupByDay(tasks []model.Task, loc *time.Location) map[dayID][]model.Task {
	out := make(map[dayID][]model.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		k := dayKey(t.DueDate.In(loc))
		out[k] = append(out[k], t)
	}
	return out
}

func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
