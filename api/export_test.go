package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExportRouter() *gin.Engine {
	h := NewExportHandler()
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/export/csv", h.ExportCSV)
	router.GET("/export/json", h.ExportJSON)
	router.GET("/export/excel", h.ExportExcel)
	return router
}

func TestExportHandler_MissingParams(t *testing.T) {
	for _, path := range []string{"/export/csv", "/export/json", "/export/excel?start_date=2024-01-01"} {
		t.Run(path, func(t *testing.T) {
			mock, cleanup := setupMockDB(t)
			defer cleanup()

			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			newTestExportRouter().ServeHTTP(w, req)

			assert.Equal(t, 400, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "请提供开始日期和结束日期", resp["message"])
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExportHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE").
		WithArgs(1, "2024-01-01", "2024-02-29").
		WillReturnRows(expenseRows())

	req := httptest.NewRequest("GET", "/export/csv?start_date=2024-01-01&end_date=2024-02-29", nil)
	w := httptest.NewRecorder()
	newTestExportRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "expenses_2024-01-01_2024-02-29.csv")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID,日期,类别,金额,描述,创建时间", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,2024-01-10,Food,100.00,聚餐,"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportJSON(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE").
		WillReturnRows(expenseRows())

	req := httptest.NewRequest("GET", "/export/json?start_date=2024-01-01&end_date=2024-02-29", nil)
	w := httptest.NewRecorder()
	newTestExportRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			StartDate string                   `json:"start_date"`
			Expenses  []map[string]interface{} `json:"expenses"`
			Stats     struct {
				Overall struct {
					Total float64 `json:"total"`
					Count int     `json:"count"`
				} `json:"overall"`
			} `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-01-01", resp.Data.StartDate)
	assert.Len(t, resp.Data.Expenses, 3)
	assert.Equal(t, 170.0, resp.Data.Stats.Overall.Total)
	assert.Equal(t, 3, resp.Data.Stats.Overall.Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE").
		WillReturnRows(expenseRows())

	req := httptest.NewRequest("GET", "/export/excel?start_date=2024-01-01&end_date=2024-02-29", nil)
	w := httptest.NewRecorder()
	newTestExportRouter().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"消费记录", "统计"}, f.GetSheetList())

	category, err := f.GetCellValue("消费记录", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Food", category)

	summary, err := f.GetCellValue("消费记录", "E5")
	require.NoError(t, err)
	assert.Equal(t, "共 3 条记录", summary)

	firstCategory, err := f.GetCellValue("统计", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Food", firstCategory)
	foodTotal, err := f.GetCellValue("统计", "B2")
	require.NoError(t, err)
	assert.Equal(t, "150", foodTotal)
	require.NoError(t, mock.ExpectationsWereMet())
}
