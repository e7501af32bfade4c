package config

import (
	"github.com/keystrand/usermeta/server/store"
)

// Config of the usermeta service
type Config struct {
	Datadir string

	HttpConfig *HttpServerConfig

	StoreConfig StoreConfig
}

// GetAuthAudiences returns the audiences session JWTs are accepted for
func (c Config) GetAuthAudiences() []string {
	audiences := []string{c.HttpConfig.AuthAudience}

	if c.HttpConfig.ExtraAuthAudience != "" {
		audiences = append(audiences, c.HttpConfig.ExtraAuthAudience)
	}

	return audiences
}

// HttpServerConfig is a config of the HTTP API server
type HttpServerConfig struct {
	// LetsEncryptDomain is the domain to issue a Let's Encrypt certificate for.
	// When set the server terminates TLS with the issued certificate.
	LetsEncryptDomain string
	// CertFile is the location of a PEM certificate to serve TLS with.
	// Ignored when LetsEncryptDomain is set.
	CertFile string
	// CertKey is the location of the PEM key for CertFile
	CertKey string
	// AuthIssuer identifies the principal that issued the session JWT (iss in JWT)
	AuthIssuer string
	// AuthAudience identifies the recipients that the session JWT is intended for (aud in JWT)
	AuthAudience string
	// ExtraAuthAudience is an extra audience accepted in addition to AuthAudience
	ExtraAuthAudience string
	// AuthSecret is the shared secret the auth framework signs session JWTs with
	AuthSecret string
	// AuthUserIDClaim is the name of the claim that used as user ID
	AuthUserIDClaim string
	// AuthGroupsClaim is the name of the claim that holds the caller group names
	AuthGroupsClaim string
}

// StoreConfig contains Store configuration
type StoreConfig struct {
	Engine store.Engine
}
