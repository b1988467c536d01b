package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/founderport/angel/pkg/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM database instance
type Database struct {
	DB *gorm.DB
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string

	// SQLitePath switches the backend to an embedded SQLite file when set.
	// Used for local development and tests.
	SQLitePath string
}

// NewDatabase creates a new database connection
func NewDatabase(config *Config) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var db *gorm.DB
	var err error

	if config.SQLitePath != "" {
		db, err = gorm.Open(sqlite.Open(config.SQLitePath), gormConfig)
	} else {
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			config.Host, config.Port, config.User, config.Password,
			config.DBName, config.SSLMode, config.TimeZone,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	database := &Database{DB: db}

	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database connected successfully")
	return database, nil
}

// Migrate runs database migrations
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.ChatMessage{},
		&models.Artifact{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := d.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := d.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin user seeding: %v", err)
	}

	return nil
}

// seedAdminUser creates the platform admin account when configured.
func (d *Database) seedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if email == "" || passwordHash == "" {
		return nil
	}

	var existing models.User
	result := d.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		existing.PasswordHash = passwordHash
		existing.IsAdmin = true
		existing.IsActive = true
		existing.IsVerified = true
		if err := d.DB.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update admin privileges: %w", err)
		}
		return nil
	}

	admin := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     "Administrator",
		IsActive:     true,
		IsVerified:   true,
		IsAdmin:      true,
	}
	if err := d.DB.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("👑 Admin user created: %s", email)
	return nil
}

// createIndexes creates additional database indexes for performance
func (d *Database) createIndexes() error {
	if d.DB.Dialector.Name() != "postgres" {
		return nil
	}

	d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email) WHERE is_active = true")
	d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_user_active ON sessions(user_id) WHERE deleted_at IS NULL")
	d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_session_date ON chat_messages(session_id, created_at)")
	d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_session_phase ON chat_messages(session_id, phase, created_at)")
	d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_artifacts_session_kind ON artifacts(session_id, kind) WHERE deleted_at IS NULL")

	return nil
}

// Health checks database connectivity
func (d *Database) Health() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM database instance
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Transaction wraps a function in a database transaction
func (d *Database) Transaction(fn func(*gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

// ConfigFromEnv builds database configuration from environment variables,
// preferring the embedded SQLite backend when SQLITE_PATH is set.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     5432,
		User:     envOr("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   envOr("DB_NAME", "angel"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
		TimeZone: "UTC",
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Port)
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
