package database

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Preference{},
	&models.EnrolledServer{},
	&models.ArchivedMessage{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
