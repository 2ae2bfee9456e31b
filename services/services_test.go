package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bolao/models"
)

// testDB opens a throwaway sqlite database with the real schema, so unique
// indexes fire exactly like they do against postgres.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bolao_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Writers queue instead of failing when tests submit concurrently.
	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Pool{},
		&models.Participant{},
		&models.Game{},
		&models.Guess{},
	))

	return db
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: []byte("x"),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createGame(t *testing.T, db *gorm.DB, kickoff time.Time) *models.Game {
	t.Helper()

	game := models.Game{
		FirstTeamCode:  "BRA",
		SecondTeamCode: "ARG",
		KickoffAt:      kickoff,
	}
	require.NoError(t, db.Create(&game).Error)
	return &game
}
