package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mahora/task-tracker/internal/constants"
	"github.com/mahora/task-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	return db
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	for _, idx := range lookupIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.model, idx.name), idx.name)
	}
}

func TestSeedUsers_CreatesMissingUsersOnce(t *testing.T) {
	db := openTestDB(t)
	path := writeSeed(t, `
users:
  - name: Alice
    email: alice@example.com
    credential: s3cret
    role: admin
  - name: Bob
    email: bob@example.com
    credential: hunter2
    role: member
`)

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed.Users, 2)

	created, err := SeedUsers(context.Background(), db, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = SeedUsers(context.Background(), db, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var users []models.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "s3cret", users[0].Credential)
	assert.Equal(t, "member", users[1].Role)
}

func TestLoadSeedFile_RequiresFields(t *testing.T) {
	path := writeSeed(t, `
users:
  - name: NoEmail
    credential: x
`)

	_, err := LoadSeedFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed user 0")
}

func TestLoadSeedFile_RejectsOverlongFields(t *testing.T) {
	path := writeSeed(t, `
users:
  - name: Alice
    email: alice@example.com
    credential: x
    role: `+strings.Repeat("r", constants.MaxRoleLength+1)+`
`)

	_, err := LoadSeedFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role is longer than 50 characters")
}

func TestLoadSeedFile_InvalidYAML(t *testing.T) {
	path := writeSeed(t, "users: [")

	_, err := LoadSeedFile(path)
	require.Error(t, err)
}
