package database

import (
	"fmt"

	"skillbridge-server/internal/models"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("Database connected and migrated successfully")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.UserSkill{},
		&models.Match{},
		&models.Conversation{},
		&models.Message{},
		&models.Review{},
		&models.Notification{},
		&models.Admin{},
		&models.UserActivity{},
	); err != nil {
		return err
	}

	// One open request per direction per pair, enforced where the handler's
	// pre-insert check cannot be: under concurrent inserts.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_open_request
		ON matches (requester_id, receiver_id)
		WHERE status IN ('pending', 'accepted') AND deleted_at IS NULL`).Error
}

// SeedSkills inserts the starter skill catalog. Safe to run on every boot.
func SeedSkills(db *gorm.DB) error {
	skills := []models.Skill{
		{Name: "Guitar", Category: "Music", Tags: pq.StringArray{"instrument", "acoustic"}},
		{Name: "Piano", Category: "Music", Tags: pq.StringArray{"instrument", "keys"}},
		{Name: "Singing", Category: "Music", Tags: pq.StringArray{"voice"}},
		{Name: "Spanish", Category: "Languages", Tags: pq.StringArray{"language", "conversation"}},
		{Name: "French", Category: "Languages", Tags: pq.StringArray{"language", "conversation"}},
		{Name: "English", Category: "Languages", Tags: pq.StringArray{"language", "conversation"}},
		{Name: "Photography", Category: "Arts", Tags: pq.StringArray{"camera", "editing"}},
		{Name: "Drawing", Category: "Arts", Tags: pq.StringArray{"sketching"}},
		{Name: "Cooking", Category: "Lifestyle", Tags: pq.StringArray{"kitchen"}},
		{Name: "Baking", Category: "Lifestyle", Tags: pq.StringArray{"kitchen", "pastry"}},
		{Name: "Yoga", Category: "Fitness", Tags: pq.StringArray{"wellness"}},
		{Name: "Swimming", Category: "Fitness", Tags: pq.StringArray{"sport"}},
		{Name: "Chess", Category: "Games", Tags: pq.StringArray{"strategy"}},
		{Name: "Programming", Category: "Technology", Tags: pq.StringArray{"coding", "software"}},
		{Name: "Web Design", Category: "Technology", Tags: pq.StringArray{"design", "frontend"}},
		{Name: "Data Analysis", Category: "Technology", Tags: pq.StringArray{"spreadsheets", "statistics"}},
		{Name: "Public Speaking", Category: "Professional", Tags: pq.StringArray{"presentation"}},
		{Name: "Writing", Category: "Professional", Tags: pq.StringArray{"editing", "storytelling"}},
		{Name: "Marketing", Category: "Professional", Tags: pq.StringArray{"social-media"}},
		{Name: "Gardening", Category: "Lifestyle", Tags: pq.StringArray{"plants", "outdoors"}},
	}

	for _, skill := range skills {
		if err := db.Where(models.Skill{Name: skill.Name}).FirstOrCreate(&skill).Error; err != nil {
			return fmt.Errorf("failed to seed skill %s: %w", skill.Name, err)
		}
	}

	logrus.Info("Skill catalog seeded successfully")
	return nil
}
