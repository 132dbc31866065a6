// Package storagetest opens migrated in-memory SQLite databases for tests.
package storagetest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"autoposter-api/internal/database"
	"autoposter-api/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewDB returns a fresh, migrated in-memory database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, storage.RunMigrations(db))
	return db
}

// NewStore returns a Store backed by NewDB.
func NewStore(t testing.TB) storage.Store {
	t.Helper()
	return storage.NewGormStore(NewDB(t), zap.NewNop())
}
