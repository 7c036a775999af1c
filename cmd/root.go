package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/myrtlewealth/blueprint/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Myrtle Wealth blueprint engine",
	Long:  "Scores wealth questionnaires into a net worth band, risk profile, persona and portfolio, writes the client narrative, and serves the questionnaire API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
