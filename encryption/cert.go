package encryption

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/acme/autocert"
)

// EnableLetsEncrypt wraps common logic of generating Let's encrypt certificate.
// Includes a HTTP handler and listener to solve the Let's encrypt challenge
func EnableLetsEncrypt(datadir string, letsencryptDomain string) *tls.Config {
	certDir := filepath.Join(datadir, "letsencrypt")

	if _, err := os.Stat(certDir); os.IsNotExist(err) {
		err = os.MkdirAll(certDir, os.ModeDir)
		if err != nil {
			log.Fatalf("failed creating Let's encrypt certdir: %s: %v", certDir, err)
		}
	}

	log.Infof("running with Let's encrypt with domain %s. Cert will be stored in %s", letsencryptDomain, certDir)

	certManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(certDir),
		HostPolicy: autocert.HostWhitelist(letsencryptDomain),
	}

	// listener to handle Let's encrypt certificate challenge
	go func() {
		if err := http.Serve(certManager.Listener(), certManager.HTTPHandler(nil)); err != nil {
			log.Fatalf("failed to serve letsencrypt handler: %v", err)
		}
	}()

	return &tls.Config{GetCertificate: certManager.GetCertificate}
}

// LoadTLSConfig loads a TLS configuration from certificate and key files,
// enforcing TLS 1.2 or newer and a modern cipher suite selection.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	serverCert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	config := &tls.Config{
		Certificates:             []tls.Certificate{serverCert},
		ClientAuth:               tls.NoClientCert,
		MinVersion:               tls.VersionTLS12,
		PreferServerCipherSuites: true,
		NextProtos: []string{
			"h2", "http/1.1",
		},
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		},
	}
	return config, nil
}
