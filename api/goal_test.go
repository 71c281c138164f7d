package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/models"
)

var goalColumns = []string{"id", "user_id", "name", "target_amount", "saved_amount", "deadline", "status", "created_at", "updated_at", "deleted_at"}

func newTestGoalRouter() *gin.Engine {
	h := NewGoalHandler()
	h.now = func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local) }

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/goals", h.Create)
	router.GET("/goals", h.List)
	router.POST("/goals/:id/contribute", h.Contribute)
	return router
}

func TestGoalHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `savings_goals`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := `{"name":"旅行","target_amount":1000,"saved_amount":250,"deadline":"2024-07-15"}`
	req := httptest.NewRequest("POST", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.GoalStatusActive, data["status"])
	assert.Equal(t, 25.0, data["progress"])
	assert.Equal(t, 750.0, data["remaining"])
	assert.Equal(t, 6.0, data["months_left"])
	assert.Equal(t, 125.0, data["monthly_needed"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Create_BadDeadline(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	body := `{"name":"旅行","target_amount":1000,"deadline":"07/15/2024"}`
	req := httptest.NewRequest("POST", "/goals", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_List_InvalidStatus(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/goals?status=paused", nil)
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_IncrementsInSQL(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `savings_goals` SET `saved_amount`=saved_amount \\+ \\?,`updated_at`=\\? WHERE \\(id = \\? AND user_id = \\?\\)").
		WithArgs(50.0, sqlmock.AnyArg(), 4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `savings_goals` SET `status`=\\?,`updated_at`=\\? WHERE \\(id = \\? AND saved_amount >= target_amount AND status <> \\?\\)").
		WithArgs(models.GoalStatusAchieved, sqlmock.AnyArg(), 4, models.GoalStatusAchieved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow(4, 1, "电脑", 5000, 150, nil, "active", time.Now(), time.Now(), nil))
	mock.ExpectCommit()

	req := httptest.NewRequest("POST", "/goals/4/contribute", bytes.NewBufferString(`{"amount":50}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 150.0, data["saved_amount"])
	assert.Equal(t, models.GoalStatusActive, data["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_Achieves(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `savings_goals` SET `saved_amount`=saved_amount \\+ \\?").
		WithArgs(300.0, sqlmock.AnyArg(), 4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `savings_goals` SET `status`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow(4, 1, "电脑", 5000, 5100, nil, "achieved", time.Now(), time.Now(), nil))
	mock.ExpectCommit()

	req := httptest.NewRequest("POST", "/goals/4/contribute", bytes.NewBufferString(`{"amount":300}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.GoalStatusAchieved, data["status"])
	assert.Equal(t, 100.0, data["progress"])
	assert.Equal(t, 0.0, data["remaining"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Contribute_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `savings_goals` SET `saved_amount`=saved_amount \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	req := httptest.NewRequest("POST", "/goals/4/contribute", bytes.NewBufferString(`{"amount":300}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestGoalRouter().ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
