//go:build integration
// +build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/database"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgres starts a disposable PostgreSQL and applies the SQL migrations.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("travel_journal_test"),
		postgres.WithUsername("travelog"),
		postgres.WithPassword("travelog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	require.NoError(t, database.RunMigrations(ctx, db))
	return db
}

func TestIntegration_MigrationsAreIdempotentAndReversible(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, database.RunMigrations(ctx, db))

	applied, err := database.NewMigrationStore(db).Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	version, err := database.RollbackLatest(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, db.Migrator().HasTable("posts"))

	require.NoError(t, database.RunMigrations(ctx, db))
	assert.True(t, db.Migrator().HasTable("post_tags"))
}

func TestIntegration_ConcurrentTagCreation(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	repo := NewPostRepository(db, NewTagRepository(db))
	owner := createUser(t, db, "racer")

	const writers = 8
	names := []string{"alba", "tramonto", "vetta"}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			post := &models.Post{UserID: owner.ID, Title: fmt.Sprintf("post %d", i), Description: "d"}
			errs <- repo.Create(ctx, post, names)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(len(names)), countRows(t, db, &models.Tag{}))
	assert.Equal(t, int64(writers*len(names)), countRows(t, db, &models.PostTag{}))
}

func TestIntegration_DeleteCascadesLinks(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	repo := NewPostRepository(db, NewTagRepository(db))
	owner := createUser(t, db, "cascade")

	post := createPost(t, repo, owner.ID, "p", time.Now(), "a", "b")
	require.NoError(t, repo.Delete(ctx, post.ID, owner.ID))

	assert.Zero(t, countRows(t, db, &models.PostTag{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.Tag{}))
}

func TestIntegration_EffortCheckConstraint(t *testing.T) {
	db := setupPostgres(t)
	owner := createUser(t, db, "check")

	effort := 9
	err := db.Create(&models.Post{UserID: owner.ID, Title: "t", Description: "d", PhysicalEffort: &effort}).Error
	assert.Error(t, err)
}
