package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// ExitSetupFailed defines exit code
	ExitSetupFailed = 1
)

var (
	defaultConfigDir  string
	defaultDataDir    string
	defaultLogDir     string
	defaultConfigPath string
	defaultLogFile    string

	configPath string
	logLevel   string
	logFile    string

	rootCmd = &cobra.Command{
		Use:          "usermeta",
		Short:        "",
		Long:         "",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultDataDir = "/var/lib/usermeta/"
	defaultConfigDir = "/etc/usermeta"
	defaultLogDir = "/var/log/usermeta"

	defaultConfigPath = defaultConfigDir + "/config.json"
	defaultLogFile = defaultLogDir + "/server.log"

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "usermeta config file location. Config params specified via command line (e.g. datadir) have a precedence over configuration from this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile, "sets usermeta log path. If console is specified the log will be output to stdout")

	rootCmd.AddCommand(serverCmd)
}

// SetupCloseHandler cancels the daemon context once SIGINT or SIGTERM is received
func SetupCloseHandler(ctx context.Context, cancel context.CancelFunc) {
	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		done := ctx.Done()
		select {
		case <-done:
		case <-termCh:
		}

		log.Info("shutdown signal received")
		cancel()
	}()
}

// SetFlagsFromEnvVars reads and updates flag values from environment variables with prefix UM_
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.VisitAll(func(f *pflag.Flag) {
		envVar := FlagNameToEnvVar(f.Name, "UM_")

		if value, present := os.LookupEnv(envVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. log-level is converted to UM_LOG_LEVEL according to the input prefix)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}
