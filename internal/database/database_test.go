package database

import (
	"testing"
	"testing/fstest"

	"github.com/AlbertoOrlando/travel-journal-app/internal/config"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 5,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "travel"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=travel sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		mode        string
		destructive bool
		runSQL      bool
		runAuto     bool
		expectError bool
	}{
		{"default hybrid in development", "development", "", false, true, true, false},
		{"hybrid in production skips automigrate", "production", "hybrid", false, true, false, false},
		{"sql only", "development", "sql", false, true, false, false},
		{"auto in test", "test", "auto", false, false, true, false},
		{"auto refused in production", "production", "auto", false, false, false, true},
		{"auto allowed in staging when destructive", "staging", "auto", true, false, true, false},
		{"unknown mode", "development", "yolo", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: tt.env, DBSchemaMode: tt.mode, DBAutoMigrateDestructive: tt.destructive}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestApplySchema_AutoMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}
	require.NoError(t, ApplySchema(t.Context(), db, cfg))

	for _, table := range []string{"users", "posts", "tags", "post_tags"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	status, err := GetSchemaStatus(t.Context(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "init_schema", ms[0].Name)
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS post_tags")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS post_tags")

	m, ok := GetMigrationByVersion(1)
	require.True(t, ok)
	assert.Equal(t, "000001_init_schema", m.String())

	_, ok = GetMigrationByVersion(999)
	assert.False(t, ok)
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/000002_b.up.sql":   {Data: []byte("B UP")},
			"migrations/000002_b.down.sql": {Data: []byte("B DOWN")},
			"migrations/000001_a.up.sql":   {Data: []byte("A UP")},
			"migrations/000001_a.down.sql": {Data: []byte("A DOWN")},
			"migrations/README.md":         {Data: []byte("ignored")},
		}
		ms, err := LoadMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, "a", ms[0].Name)
		assert.Equal(t, "B DOWN", ms[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{"migrations/000001_a.up.sql": {Data: []byte("A UP")}}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/abc_a.up.sql":   {Data: []byte("A UP")},
			"migrations/abc_a.down.sql": {Data: []byte("A DOWN")},
		}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/000001_a.up.sql":   {Data: []byte("A")},
			"migrations/000001_a.down.sql": {Data: []byte("A")},
			"migrations/000001_b.up.sql":   {Data: []byte("B")},
			"migrations/000001_b.down.sql": {Data: []byte("B")},
		}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestPendingMigrations(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	pending := pendingMigrations([]int{1, 3}, registered)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
}

func TestPersistentModels(t *testing.T) {
	var sawPostTag bool
	for _, m := range PersistentModels() {
		if _, ok := m.(*models.PostTag); ok {
			sawPostTag = true
		}
	}
	assert.True(t, sawPostTag, "PersistentModels should include PostTag")
	assert.Len(t, PersistentModels(), 4)
}
