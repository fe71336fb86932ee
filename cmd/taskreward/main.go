package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"taskreward/internal/config"
)

var Version = "dev"

// app carries what every subcommand needs once the config is resolved.
type app struct {
	cfgPath string
	dataDir string
	cfg     *config.Config
	logger  *log.Logger
}

func main() {
	// Variables already set in the environment win over .env.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				_ = os.Setenv(k, v)
			}
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: log.New(os.Stderr, "", 0)}

	rootCmd := &cobra.Command{
		Use:           "taskreward",
		Short:         "Task tracker that pays out points, minutes and rubles",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "taskreward.yml", "path to YAML config")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "override data.dir")

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(cloudCmd(a))
	rootCmd.AddCommand(registerCmd(a))
	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))
	rootCmd.AddCommand(syncCmd(a))
	rootCmd.AddCommand(reportCmd(a))
	rootCmd.AddCommand(backupCmd(a))
	rootCmd.AddCommand(restoreCmd(a))
	rootCmd.AddCommand(drillCmd(a))

	return rootCmd
}

// loadConfig reads the config file if it exists, then applies TASKREWARD_*
// overrides and flags.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return fmt.Errorf("load config %s: %w", a.cfgPath, err)
	}
	cfg.ApplyEnv()
	if a.dataDir != "" {
		cfg.Data.Dir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	return nil
}
