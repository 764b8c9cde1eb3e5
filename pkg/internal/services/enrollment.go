package services

import (
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/database"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"gorm.io/gorm/clause"
)

// TouchServer records a visit, enrolling the server on first contact.
func TouchServer(serverID string) error {
	now := time.Now()
	return database.C.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_visited_at"}),
	}).Create(&models.EnrolledServer{
		ID:            serverID,
		LastVisitedAt: now,
		CreatedAt:     now,
	}).Error
}

// ListEnrolledServers returns every known server, most recently visited
// first, for the server rail.
func ListEnrolledServers() ([]models.EnrolledServer, error) {
	var servers []models.EnrolledServer
	if err := database.C.Order("last_visited_at DESC").Find(&servers).Error; err != nil {
		return nil, err
	}
	return servers, nil
}
