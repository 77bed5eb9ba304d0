package leadimport

import (
	"time"

	"leadcrm/internal/domain"
)

// ImportRecord is the audit row written after every committed import.
type ImportRecord struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	UserID       *int64       `json:"user_id" gorm:"index"`
	User         *domain.User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	FileName     string       `json:"file_name" gorm:"size:255"`
	ArchiveKey   string       `json:"archive_key,omitempty" gorm:"size:512"`
	RowsRead     int          `json:"rows_read"`
	RowsInserted int          `json:"rows_inserted"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
}

func (ImportRecord) TableName() string { return "lead_imports" }
