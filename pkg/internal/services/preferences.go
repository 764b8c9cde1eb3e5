package services

import (
	"strconv"
	"time"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/database"
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"gorm.io/gorm/clause"
)

const (
	PreferenceNotificationMode = "notifications.mode"
	PreferenceSoundboardVolume = "soundboard.volume"
)

const (
	NotificationModeAll      = "all"
	NotificationModeMentions = "mentions"
	NotificationModeNone     = "none"
)

func GetPreference(key, fallback string) string {
	var pref models.Preference
	if err := database.C.Where("key = ?", key).First(&pref).Error; err != nil {
		return fallback
	}
	return pref.Value
}

func SetPreference(key, value string) error {
	return database.C.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Preference{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}).Error
}

func NotificationMode() string {
	return GetPreference(PreferenceNotificationMode, NotificationModeAll)
}

// SoundboardVolume is the master playback volume in percent.
func SoundboardVolume() int {
	raw := GetPreference(PreferenceSoundboardVolume, "100")
	volume, err := strconv.Atoi(raw)
	if err != nil || volume < 0 || volume > 100 {
		return 100
	}
	return volume
}
