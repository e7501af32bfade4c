package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/keystrand/usermeta/encryption"
	"github.com/keystrand/usermeta/server/activity/sqlite"
	"github.com/keystrand/usermeta/server/auth"
	"github.com/keystrand/usermeta/server/cache"
	umconfig "github.com/keystrand/usermeta/server/config"
	umhttp "github.com/keystrand/usermeta/server/http"
	"github.com/keystrand/usermeta/server/metadata"
	"github.com/keystrand/usermeta/server/store"
	"github.com/keystrand/usermeta/server/telemetry"
	"github.com/keystrand/usermeta/util"
	"github.com/keystrand/usermeta/version"
)

var (
	serverPort        int
	serverDataDir     string
	metricsPort       int
	letsencryptDomain string
	certFile          string
	certKey           string

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "start the usermeta API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			SetFlagsFromEnvVars(rootCmd)
			SetFlagsFromEnvVars(cmd)

			err := util.InitLog(logLevel, logFile)
			if err != nil {
				return fmt.Errorf("failed initializing log %v", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			config := &umconfig.Config{}
			if util.FileExists(configPath) {
				if _, err = util.ReadJson(configPath, config); err != nil {
					return fmt.Errorf("failed reading provided config file: %s: %v", configPath, err)
				}
			} else {
				log.WithContext(ctx).Warnf("config file %s not found, starting with defaults", configPath)
			}

			if serverDataDir != "" {
				config.Datadir = serverDataDir
			}
			if config.Datadir == "" {
				config.Datadir = defaultDataDir
			}
			if config.HttpConfig == nil {
				config.HttpConfig = &umconfig.HttpServerConfig{}
			}
			if letsencryptDomain != "" {
				config.HttpConfig.LetsEncryptDomain = letsencryptDomain
			}
			if certFile != "" {
				config.HttpConfig.CertFile = certFile
			}
			if certKey != "" {
				config.HttpConfig.CertKey = certKey
			}

			if _, err = os.Stat(config.Datadir); os.IsNotExist(err) {
				err = os.MkdirAll(config.Datadir, os.ModeDir)
				if err != nil {
					return fmt.Errorf("failed creating datadir: %s: %v", config.Datadir, err)
				}
			}

			appMetrics, err := telemetry.NewDefaultAppMetrics(ctx)
			if err != nil {
				return err
			}
			err = appMetrics.Expose(ctx, metricsPort, "/metrics")
			if err != nil {
				return fmt.Errorf("failed to expose metrics: %v", err)
			}

			userStore, err := store.NewStore(ctx, config.StoreConfig.Engine, config.Datadir, appMetrics)
			if err != nil {
				return fmt.Errorf("failed creating a store: %s: %v", config.Datadir, err)
			}

			eventStore, err := sqlite.NewSQLiteStore(config.Datadir)
			if err != nil {
				return fmt.Errorf("failed creating an event store: %s: %v", config.Datadir, err)
			}

			cacheStore, err := cache.NewStore(cache.DefaultSessionCacheExpirationMax, cache.DefaultSessionCacheCleanupInterval)
			if err != nil {
				return fmt.Errorf("failed creating a session cache store: %v", err)
			}

			authManager := auth.NewManager(userStore,
				cache.NewSessionCache(cacheStore),
				config.HttpConfig.AuthIssuer,
				config.GetAuthAudiences(),
				[]byte(config.HttpConfig.AuthSecret),
				config.HttpConfig.AuthUserIDClaim,
				config.HttpConfig.AuthGroupsClaim)

			metadataManager := metadata.NewManager(userStore, eventStore)

			httpAPIHandler, err := umhttp.NewAPIHandler(metadataManager, authManager, appMetrics, nil)
			if err != nil {
				return fmt.Errorf("failed creating HTTP API handler: %v", err)
			}

			var tlsConfig *tls.Config
			if config.HttpConfig.LetsEncryptDomain != "" {
				tlsConfig = encryption.EnableLetsEncrypt(config.Datadir, config.HttpConfig.LetsEncryptDomain)
			} else if config.HttpConfig.CertFile != "" && config.HttpConfig.CertKey != "" {
				tlsConfig, err = encryption.LoadTLSConfig(config.HttpConfig.CertFile, config.HttpConfig.CertKey)
				if err != nil {
					return fmt.Errorf("cannot load TLS credentials: %v", err)
				}
			}

			var listener net.Listener
			if tlsConfig != nil {
				listener, err = tls.Listen("tcp", fmt.Sprintf(":%d", serverPort), tlsConfig)
			} else {
				listener, err = net.Listen("tcp", fmt.Sprintf(":%d", serverPort))
			}
			if err != nil {
				return fmt.Errorf("failed creating TCP listener on port %d: %v", serverPort, err)
			}

			httpServer := &http.Server{Handler: httpAPIHandler}
			errCh := make(chan error, 1)
			go func() {
				err := httpServer.Serve(listener)
				if ctx.Err() != nil {
					return
				}
				errCh <- err
			}()

			log.WithContext(ctx).Infof("usermeta server version %s", version.UsermetaVersion())
			log.WithContext(ctx).Infof("running HTTP API server: %s", listener.Addr().String())

			update := version.NewUpdate()
			update.SetOnUpdateListener(func(latest string) {
				log.WithContext(ctx).Infof("your usermeta version, %s, is outdated, the latest available version is %s", version.UsermetaVersion(), latest)
			})

			SetupCloseHandler(ctx, cancel)

			select {
			case err := <-errCh:
				log.WithContext(ctx).Errorf("HTTP server error: %v", err)
			case <-ctx.Done():
			}

			return stop(ctx, httpServer, userStore, eventStore, appMetrics)
		},
	}
)

// stop attempts a graceful shutdown, waiting up to 5 seconds for in-flight requests to finish
func stop(ctx context.Context, httpServer *http.Server, userStore store.Store, eventStore *sqlite.Store, appMetrics telemetry.AppMetrics) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	var result *multierror.Error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("shutdown HTTP server: %w", err))
	}
	if err := userStore.Close(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("close store: %w", err))
	}
	if err := eventStore.Close(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("close event store: %w", err))
	}
	if err := appMetrics.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close metrics: %w", err))
	}

	log.WithContext(ctx).Info("stopped usermeta server")

	return result.ErrorOrNil()
}

func init() {
	serverCmd.PersistentFlags().IntVar(&serverPort, "port", 8081, "server port to listen on")
	serverCmd.PersistentFlags().StringVar(&serverDataDir, "datadir", "", "server data directory location")
	serverCmd.PersistentFlags().IntVar(&metricsPort, "metrics-port", 9090, "metrics endpoint http port")
	serverCmd.PersistentFlags().StringVar(&letsencryptDomain, "letsencrypt-domain", "", "a domain to issue Let's Encrypt certificate for. Enables TLS using Let's Encrypt. Will fetch and renew certificate, and run the server with TLS")
	serverCmd.PersistentFlags().StringVar(&certFile, "cert-file", "", "Location of your SSL certificate. Can be used when you have an existing certificate and don't want a new certificate be generated automatically. If letsencrypt-domain is specified this property has no effect")
	serverCmd.PersistentFlags().StringVar(&certKey, "cert-key", "", "Location of your SSL certificate private key. Can be used when you have an existing certificate and don't want a new certificate be generated automatically. If letsencrypt-domain is specified this property has no effect")
}
