package services

import (
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/database"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// ArchiveMessage keeps an offline copy of one message. Ciphertext is stored
// as-is; plaintext never touches the archive unless the wire carried it.
func ArchiveMessage(msg models.Message) error {
	body := datatypes.JSONMap{
		"sender_name": msg.SenderName,
		"content":     msg.Content,
		"ciphertext":  msg.Ciphertext,
		"algorithm":   msg.Algorithm,
		"attachments": msg.Attachments,
	}
	return database.C.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ArchivedMessage{
		ID:         msg.ID,
		ChannelID:  msg.ChannelID,
		SenderID:   msg.SenderID,
		Body:       body,
		CreatedAt:  msg.CreatedAt,
		ArchivedAt: time.Now(),
	}).Error
}

func DoAutoArchiveCleanup() {
	retention := viper.GetInt("archive.retention_days")
	if retention <= 0 {
		retention = 30
	}
	deadline := time.Now().AddDate(0, 0, -retention)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up the local message archive...")

	tx := database.C.Delete(&models.ArchivedMessage{}, "archived_at < ?", deadline)
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when cleaning up the message archive...")
		return
	}

	log.Debug().Int64("affected", tx.RowsAffected).Msg("Clean up local message archive accomplished.")
}
