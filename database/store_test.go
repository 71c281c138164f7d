package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"spendlens/analytics"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewStore(gormDB), mock
}

var expenseColumns = []string{"id", "user_id", "amount", "category", "description", "date", "created_at", "updated_at", "deleted_at"}

func TestStore_ListExpenses(t *testing.T) {
	store, mock := setupMockStore(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_id = \\? AND date >= \\? AND date <= \\?").
		WithArgs(1, "2024-01-01", "2024-01-31").
		WillReturnRows(sqlmock.NewRows(expenseColumns).
			AddRow(1, 1, 12.5, "Food", "早餐", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Now(), time.Now(), nil).
			AddRow(2, 1, 30, "Transport", "", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), time.Now(), time.Now(), nil))

	expenses, err := store.ListExpenses(context.Background(), 1, &from, &to)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, analytics.CategoryFood, expenses[0].Category)
	assert.Equal(t, 30.0, expenses[1].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListExpenses_NoRange(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_id = \\? AND `expenses`.`deleted_at` IS NULL ORDER BY").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(expenseColumns))

	expenses, err := store.ListExpenses(context.Background(), 7, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListBudgetsAndGoals(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category", "amount", "alert_enabled", "last_alerted_month"}).
			AddRow(1, 1, "", 1000, true, "").
			AddRow(2, 1, "Food", 300, false, "2024-01"))
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "target_amount", "saved_amount", "status"}).
			AddRow(1, 1, "旅行", 5000, 1200, "active"))

	budgets, err := store.ListBudgets(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.True(t, budgets[0].IsOverall())
	assert.Equal(t, "2024-01", budgets[1].LastAlertedMonth)

	goals, err := store.ListGoals(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, 24.0, goals[0].Progress())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := store.GetUser(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MarkBudgetAlerted(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets` SET `last_alerted_month`=\\?").
		WithArgs("2024-03", sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.MarkBudgetAlerted(context.Background(), 9, "2024-03"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.ErrorIs(t, store.MarkBudgetAlerted(context.Background(), 10, "2024-03"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
