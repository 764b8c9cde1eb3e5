package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

func TestIdentityComesFromTheGatewayToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, gatewayClaims{
		Username: "maya",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "acct-1",
		},
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	viper.Set("gateway.token", signed)
	t.Cleanup(func() { viper.Set("gateway.token", "") })

	identity := LocalIdentity()
	if identity.ID != "acct-1" || identity.Username != "maya" {
		t.Fatalf("identity = %#v", identity)
	}
}

func TestIdentityFallsBackToSettings(t *testing.T) {
	viper.Set("gateway.token", "not a token at all")
	viper.Set("identity.id", "acct-local")
	viper.Set("identity.username", "local")
	t.Cleanup(func() {
		viper.Set("gateway.token", "")
		viper.Set("identity.id", "")
		viper.Set("identity.username", "")
	})

	identity := LocalIdentity()
	if identity.ID != "acct-local" || identity.Username != "local" {
		t.Fatalf("identity = %#v", identity)
	}
}
