package services

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/policy"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DesktopNotifier raises notifications for messages the engine decided are
// worth surfacing, subject to the user's notification mode preference.
type DesktopNotifier struct{}

func (DesktopNotifier) ShouldNotify(channelID, senderID, content, parentID, selfUsername string) bool {
	if !viper.GetBool("notifications.enabled") {
		return false
	}
	switch NotificationMode() {
	case NotificationModeNone:
		return false
	case NotificationModeMentions:
		return policy.ContainsMention(content, selfUsername)
	default:
		return true
	}
}

func (DesktopNotifier) PlaySound() {
	log.Debug().Int("volume", SoundboardVolume()).Msg("Playing a soundboard clip.")
}

func (DesktopNotifier) ShowDesktopNotification(sender, text string) {
	log.Info().Str("sender", sender).Str("text", text).Msg("Desktop notification raised.")
}
