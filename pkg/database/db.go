package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalSeats   int    `gorm:"default:0" json:"total_seats"`
	TotalMembers int    `gorm:"default:0" json:"total_members"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// SnapshotRecord holds one roster period's published snapshot as a whole
// JSON document. Version changes on every publish and gates run commits.
type SnapshotRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PeriodID  string    `gorm:"uniqueIndex;not null" json:"period_id"`
	Version   string    `gorm:"not null" json:"version"`
	Payload   string    `gorm:"not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunRecord holds the latest committed run report for a period, tagged with
// the snapshot version it was computed from.
type RunRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PeriodID        string    `gorm:"uniqueIndex;not null" json:"period_id"`
	SnapshotVersion string    `gorm:"not null" json:"snapshot_version"`
	Payload         string    `gorm:"not null" json:"payload"`
	CreatedAt       time.Time `json:"created_at"`
}

// LockRecord is one supervisor lock, one row per seat key so edits touch a
// single key rather than rewriting the period's whole lock map.
type LockRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PeriodID  string    `gorm:"uniqueIndex:idx_period_seat;not null" json:"period_id"`
	ShiftID   string    `gorm:"uniqueIndex:idx_period_seat;not null" json:"shift_id"`
	SeatID    string    `gorm:"uniqueIndex:idx_period_seat;not null" json:"seat_id"`
	MemberID  string    `gorm:"not null" json:"member_id"`
	Mode      string    `gorm:"not null" json:"mode"`
	Allow     string    `json:"allow"` // comma-joined allow list
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoringSettings is the single-row table of scoring weights.
type ScoringSettings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	QualifiedWeight float64   `json:"qualified_weight"`
	FullWeight      float64   `json:"full_weight"`
	PartialWeight   float64   `json:"partial_weight"`
	FairnessWeight  float64   `json:"fairness_weight"`
	NearCapWeight   float64   `json:"near_cap_weight"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InitDB initializes the database connection and migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "roster.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&SnapshotRecord{}, &RunRecord{}, &LockRecord{}, &ScoringSettings{},
	)

	return db
}
