package session

import (
	"github.com/golang-jwt/jwt/v5"
	engine "github.com/meridiem-chat/meridiem-client/pkg/internal/sync"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type gatewayClaims struct {
	Username string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// LocalIdentity derives the account identity from the configured gateway
// token. The gateway verifies the signature; here only the claims matter,
// with the identity table in settings as the fallback.
func LocalIdentity() engine.Identity {
	fallback := engine.Identity{
		ID:       viper.GetString("identity.id"),
		Username: viper.GetString("identity.username"),
	}

	token := viper.GetString("gateway.token")
	if token == "" {
		return fallback
	}

	var claims gatewayClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		log.Warn().Err(err).Msg("Unable to read the gateway token, falling back to configured identity.")
		return fallback
	}

	identity := engine.Identity{ID: claims.Subject, Username: claims.Username}
	if identity.ID == "" {
		identity.ID = fallback.ID
	}
	if identity.Username == "" {
		identity.Username = fallback.Username
	}
	return identity
}
