package db

import (
	"fmt"
	"os"
	"time"

	"cinelink/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the Postgres connection, migrates the comment-subsystem schema
// and seeds the reaction type catalog.
func Init(log *zap.Logger) (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=cinelink port=5432 sslmode=disable TimeZone=UTC"
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established")

	if err := Migrate(database); err != nil {
		return nil, err
	}
	log.Info("Database migration completed")

	seedReactionTypes(database, log)

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return database, nil
}

// Migrate applies the schema. Split out so tests can run it against their own
// connection.
func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(
		&models.User{},
		&models.Discussion{},
		&models.Comment{},
		&models.Vote{},
		&models.ReactionType{},
		&models.Reaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func seedReactionTypes(database *gorm.DB, log *zap.Logger) {
	var count int64
	database.Model(&models.ReactionType{}).Count(&count)
	if count > 0 {
		return
	}

	types := []models.ReactionType{
		{Name: "love", Emoji: "❤️", Category: "positive"},
		{Name: "laugh", Emoji: "😂", Category: "positive"},
		{Name: "surprised", Emoji: "😮", Category: "neutral"},
		{Name: "sad", Emoji: "😢", Category: "negative"},
		{Name: "popcorn", Emoji: "🍿", Category: "neutral"},
	}

	for _, rt := range types {
		if err := database.Create(&rt).Error; err != nil {
			log.Warn("Failed to seed reaction type", zap.String("name", rt.Name), zap.Error(err))
		}
	}
	log.Info("Reaction types seeded")
}
