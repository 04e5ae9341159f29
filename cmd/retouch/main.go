// Command retouch manages photo editing sessions from the command line:
// import photos, inspect and replay their edit logs, run face detection
// and export finished images.
//
// Basic usage:
//
//	retouch import photos/beach.jpg
//	retouch list
//	retouch info <session-id>
//	retouch export <session-id> -o edited.png
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"photo-retouch/internal/config"
	"photo-retouch/internal/version"
)

var (
	cfgPath  string
	logLevel string
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "retouch",
		Short:         "Non-destructive photo retouching sessions",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "retouch.yaml", "path to configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")

	root.AddCommand(
		newImportCmd(),
		newListCmd(),
		newInfoCmd(),
		newExportCmd(),
		newDetectCmd(),
		newDeleteCmd(),
	)
	return root
}

// loadEnv loads configuration and builds the logger shared by all
// subcommands.
func loadEnv() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogrusLevel())
	return cfg, log, nil
}
