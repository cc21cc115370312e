/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/gsf/pkg/config"
	"github.com/ssargent/gsf/pkg/store"
)

var (
	cfgFile  string
	logLevel string
)

// env is what every subcommand runs against.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	table *store.Table
}

type envKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gsf",
	Short: "Inspect and annotate GSF sonar data files",
	Long: `gsf reads and writes Generic Sensor Format files: multibeam and
single beam sonar pings, sound velocity profiles, navigation errors and
the comments and history that travel with them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cfgFile, logLevel, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// loadEnv reads the configuration, explicit or default, and builds the logger
// and stream table from it.
func loadEnv(cfgPath, level string, logOut io.Writer) (*env, error) {
	cfg := config.DefaultConfig()
	switch {
	case cfgPath != "":
		loaded, err := config.LoadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level != "" {
		cfg.Logging.Level = level
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg: cfg,
		log: zerolog.New(zerolog.ConsoleWriter{Out: logOut}).Level(lvl).With().Timestamp().Logger(),
	}
	e.table = store.New(cfg.StoreOptions(&e.log))
	return e, nil
}

func envFrom(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey{}).(*env)
	if !ok {
		return nil, errors.New("command environment not initialized")
	}
	return e, nil
}
