package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 12, cfg.Analytics.HistoryMonths)
	assert.Equal(t, 3, cfg.Analytics.DefaultMonthsAhead)
	assert.Equal(t, 24, cfg.Analytics.MaxMonthsAhead)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfig_ExternalFileAndEnv(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \":9090\"\nanalytics:\n  max_months_ahead: 6\n  default_months_ahead: 12\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("SPENDLENS_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 6, cfg.Analytics.MaxMonthsAhead)
	// 默认预测月数不能超过上限
	assert.Equal(t, 6, cfg.Analytics.DefaultMonthsAhead)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestGetConfig_PanicsWhenNotLoaded(t *testing.T) {
	GlobalConfig = nil
	assert.Panics(t, func() { GetConfig() })
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "3306", Username: "u", Password: "p", DBName: "x", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/x?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())
}
