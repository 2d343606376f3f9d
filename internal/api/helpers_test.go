package api

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens a per-test in-memory database with the production schema.
// The tables are created by hand because the Postgres column defaults in the
// model tags do not exist on SQLite.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := []string{
		`CREATE TABLE preference_profiles (
			id TEXT PRIMARY KEY,
			created_at DATETIME,
			updated_at DATETIME,
			user_id TEXT NOT NULL UNIQUE,
			dietary_restrictions TEXT NOT NULL DEFAULT '[]',
			allergies TEXT NOT NULL DEFAULT '[]',
			cuisine_preferences TEXT NOT NULL DEFAULT '[]',
			meal_type TEXT,
			skill_level TEXT,
			additional_prompt TEXT
		)`,
		`CREATE TABLE favorite_recipes (
			id TEXT PRIMARY KEY,
			created_at DATETIME,
			updated_at DATETIME,
			user_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			title TEXT NOT NULL,
			"match" INTEGER NOT NULL DEFAULT 0,
			description TEXT,
			category TEXT,
			skill_level TEXT,
			ingredients TEXT NOT NULL DEFAULT '[]',
			directions TEXT NOT NULL DEFAULT '[]',
			dietary_tags TEXT NOT NULL DEFAULT '[]',
			embedding TEXT
		)`,
		`CREATE UNIQUE INDEX idx_user_fingerprint ON favorite_recipes (user_id, fingerprint)`,
		`CREATE TABLE scan_records (
			id TEXT PRIMARY KEY,
			created_at DATETIME,
			user_id TEXT NOT NULL,
			detected_ingredients TEXT NOT NULL DEFAULT '[]',
			recipe_count INTEGER NOT NULL DEFAULT 0,
			image_url TEXT
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return db
}

// authToken issues a token the way the identity provider would.
func authToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID.String(),
		"username": "tester",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}
