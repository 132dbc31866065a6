//go:build integration

package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"autoposter-api/internal/common"
	"autoposter-api/internal/config"
	"autoposter-api/internal/database"
	"autoposter-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// setupPostgresStore starts a PostgreSQL container and returns a migrated store
func setupPostgresStore(t *testing.T) storage.Store {
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("test_autoposter"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(ctx))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	db, err := database.NewPostgresConnection(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "test_user",
		Password:        "test_password",
		DBName:          "test_autoposter",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 300,
		ConnectTimeout:  30,
	}, logger)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, storage.RunMigrations(db))
	require.NoError(t, storage.ValidateMigrations(db))

	return storage.NewGormStore(db, logger)
}

func TestPostgresStore_ConcurrentSettingsUpsert(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	userID := common.UserID("user-concurrent")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(limit int) {
			defer wg.Done()
			_, err := store.UpsertBotSettings(ctx, userID, storage.BotSettingsPatch{DailyTweetLimit: &limit})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	active, err := store.ListActiveBotSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestPostgresStore_PostLifecycle(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	userID := common.UserID("user-lifecycle")
	now := time.Now().UTC().Truncate(time.Microsecond)

	scheduledFor := now.Add(-time.Minute)
	post := &storage.Post{UserID: userID, Content: "hello", Status: storage.PostStatusScheduled, ScheduledFor: &scheduledFor}
	require.NoError(t, store.CreatePost(ctx, post))

	due, err := store.ListDuePosts(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, due, 1)

	posted := storage.PostStatusPosted
	tweetID := "1790000000000000000"
	updated, err := store.UpdatePost(ctx, post.ID, storage.PostUpdate{Status: &posted, TweetID: &tweetID, PostedAt: &now})
	require.NoError(t, err)
	assert.Equal(t, storage.PostStatusPosted, updated.Status)

	stats, err := store.GetDashboardStats(ctx, userID, common.StartOfDay(now, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalTweets)
	assert.Equal(t, int64(1), stats.TodayTweets)

	require.NoError(t, store.DeletePost(ctx, post.ID))
	assert.True(t, storage.IsNotFoundError(store.DeletePost(ctx, post.ID)))
}

func TestPostgresStore_AnalyticsUpsert(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()
	userID := common.UserID("user-analytics")
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertAnalytics(ctx, &storage.Analytics{UserID: userID, Date: day, TweetsPosted: 1}))
	require.NoError(t, store.UpsertAnalytics(ctx, &storage.Analytics{UserID: userID, Date: day, TweetsPosted: 2}))

	rows, err := store.GetAnalytics(ctx, userID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].TweetsPosted)
}
