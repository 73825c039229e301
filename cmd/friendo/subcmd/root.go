package subcmd

import (
	"github.com/friendo-bot/friendo/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func init() {
	pfxlog.GlobalInit(logrus.InfoLevel, pfxlog.DefaultOptions().SetTrimPrefix("github.com/friendo-bot/"))

	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ~/.config/friendo/config.yml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

var RootCmd = &cobra.Command{
	Use:   "friendo",
	Short: "Chat-operated controller for an EC2-hosted Minecraft server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logrus.Fatalf("failure: %v", err)
	}
}

func loadConfig() (*model.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = model.DefaultConfigFile(); err != nil {
			return nil, err
		}
	}
	return model.LoadConfig(path)
}
