package services

import (
	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// LocalStore adapts the persistence services to the engine's store
// collaborator. Persistence is best-effort; failures are logged and never
// propagate into event handling.
type LocalStore struct{}

func (LocalStore) ArchiveMessage(msg models.Message) {
	if err := ArchiveMessage(msg); err != nil {
		log.Warn().Err(err).Str("message", msg.ID).Msg("Unable to archive a message locally.")
	}
}

func (LocalStore) TouchServer(serverID string) {
	if err := TouchServer(serverID); err != nil {
		log.Warn().Err(err).Str("server", serverID).Msg("Unable to record a server visit.")
	}
}
