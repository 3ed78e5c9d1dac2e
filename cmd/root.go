package cmd

import (
	"github.com/jsphweid/harmonseq/config"
	"github.com/jsphweid/harmonseq/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "harmonseq",
	Short: "Sequencer event store with harmony analysis",
	Long: `harmonseq keeps midi tracks with undo history, analyzes which chords a
melody implies and moves notes onto a chord progression.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.GetConfigPath(), "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
