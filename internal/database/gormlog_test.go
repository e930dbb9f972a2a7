package database

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := middleware.Logger
	middleware.Logger = middleware.NewLogger(&buf, "production", "debug")
	t.Cleanup(func() { middleware.Logger = prev })
	return &buf
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors are logged", func(t *testing.T) {
		buf := captureLogs(t)
		NewGormLogger(logger.Warn).Trace(t.Context(), time.Now(), sql, errors.New("boom"))
		assert.Contains(t, buf.String(), `"msg":"sql failed"`)
		assert.Contains(t, buf.String(), `"error":"boom"`)
	})

	t.Run("missing records are not errors", func(t *testing.T) {
		buf := captureLogs(t)
		NewGormLogger(logger.Warn).Trace(t.Context(), time.Now(), sql, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		buf := captureLogs(t)
		NewGormLogger(logger.Warn).Trace(t.Context(), time.Now().Add(-time.Second), sql, nil)
		assert.Contains(t, buf.String(), `"msg":"sql slow"`)
	})

	t.Run("info logs everything", func(t *testing.T) {
		buf := captureLogs(t)
		NewGormLogger(logger.Warn).LogMode(logger.Info).Trace(t.Context(), time.Now(), sql, nil)
		assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
	})

	t.Run("silent", func(t *testing.T) {
		buf := captureLogs(t)
		NewGormLogger(logger.Silent).Trace(t.Context(), time.Now(), sql, errors.New("boom"))
		assert.Empty(t, buf.String())
	})
}

func TestInstrument_ObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewGormLogger(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, instrument(db))

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)

	var rows []probe
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(observability.DatabaseQueryLatency), 2)
}
