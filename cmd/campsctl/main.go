// Command campsctl runs CAMPS trend maintenance tasks against the configured
// database without starting the gRPC server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/godilite/camps-trends/internal/config"
)

var Version = "dev"

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "campsctl",
		Short:         "CAMPS engagement trend maintenance",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("thresholds", "", "YAML thresholds file (env THRESHOLDS_FILE)")
	_ = v.BindPFlag("thresholds_file", root.PersistentFlags().Lookup("thresholds"))
	_ = v.BindEnv("thresholds_file", "THRESHOLDS_FILE")

	root.AddCommand(newRecalculateCmd(v), newThresholdsCmd(v))
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.ThresholdsFile = v.GetString("thresholds_file")
	return cfg, nil
}
