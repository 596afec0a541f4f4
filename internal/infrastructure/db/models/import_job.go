package models

import "time"

type ImportJob struct {
	ID                string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SourcePath        string  `gorm:"type:text;not null"`
	Status            string  `gorm:"type:text;not null;index"`
	Roles             string  `gorm:"type:text;not null;default:'[]'"`
	Notify            bool    `gorm:"not null;default:false"`
	ProgressProcessed int64   `gorm:"not null;default:0"`
	ProgressTotal     int64   `gorm:"not null;default:0"`
	CreatedCount      int64   `gorm:"not null;default:0"`
	WaitlistedCount   int64   `gorm:"not null;default:0"`
	SkippedCount      int64   `gorm:"not null;default:0"`
	FailedCount       int64   `gorm:"not null;default:0"`
	Failures          string  `gorm:"type:text;not null;default:'[]'"`
	Attempts          int     `gorm:"not null;default:0"`
	MaxAttempts       int     `gorm:"not null;default:5"`
	ErrorMessage      *string `gorm:"type:text"`
	HeartbeatAt       *time.Time
	LeaseExpiresAt    *time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
