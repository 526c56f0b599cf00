package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"planner/internal/model"
	"planner/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewHandler_Board(t *testing.T) {
	// Arrange
	f := setupAPITest(t)
	f.createTask(t, "todo")
	done := f.createTask(t, "done")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/tasks/"+done.ID.String()+"/toggle", nil).Code)

	// Act
	resp := f.do(http.MethodGet, "/views/board", nil)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code)
	var board view.BoardView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &board))
	require.Len(t, board.Columns, 3)
	byStatus := map[model.Status]int{}
	for _, col := range board.Columns {
		byStatus[col.Status] = len(col.Tasks)
	}
	assert.Equal(t, 1, byStatus[model.StatusTodo])
	assert.Equal(t, 0, byStatus[model.StatusInProgress])
	assert.Equal(t, 1, byStatus[model.StatusDone])
	assert.Equal(t, 2, board.Counts.All)
}

func TestViewHandler_CalendarMonth(t *testing.T) {
	// Arrange
	f := setupAPITest(t)
	due := time.Date(2024, 3, 14, 12, 0, 0, 0, time.Local)
	f.create(t, model.NewTask{Title: "Pi day", DueDate: &due})

	// Act
	resp := f.do(http.MethodGet, "/views/calendar?month=2024-03", nil)

	// Assert
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var cal view.CalendarView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cal))
	assert.Equal(t, 2024, cal.Month.Year())
	assert.Equal(t, time.March, cal.Month.Month())
	assert.Equal(t, 5, cal.LeadingBlanks)
	require.Len(t, cal.Days, 31)
	require.Len(t, cal.Days[13].Tasks, 1)
	assert.Equal(t, "Pi day", cal.Days[13].Tasks[0].Title)
}

func TestViewHandler_PlannerWeek(t *testing.T) {
	f := setupAPITest(t)

	resp := f.do(http.MethodGet, "/views/planner?week=2024-03-14", nil)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var planner view.PlannerView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &planner))
	assert.Equal(t, "2024-03-11", planner.WeekStart.Format(time.DateOnly))
	assert.Len(t, planner.Days, 7)
}

func TestViewHandler_QueryRejections(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "month not yyyy-mm", path: "/views/calendar?month=March"},
		{name: "week not a date", path: "/views/planner?week=14-03-2024"},
		{name: "unknown status filter", path: "/views/list?filter=urgent"},
		{name: "category not a uuid", path: "/views/board?category=work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAPITest(t)

			resp := f.do(http.MethodGet, tt.path, nil)

			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestViewHandler_ListSearchAndCategory(t *testing.T) {
	f := setupAPITest(t)
	errands := f.createCategory(t, "Errands")
	f.create(t, model.NewTask{Title: "Post office", CategoryID: &errands.ID})
	f.createTask(t, "Write report")

	resp := f.do(http.MethodGet, "/views/list?category="+errands.ID.String()+"&q=post", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var list view.ListView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Post office", list.Tasks[0].Title)
}
