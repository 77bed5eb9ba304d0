package database

import (
	"leadcrm/internal/domain"
	"leadcrm/internal/domain/lead"
	"leadcrm/internal/domain/leadimport"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&lead.Lead{},
		&lead.Comment{},
		&leadimport.ImportRecord{},
	)
}
