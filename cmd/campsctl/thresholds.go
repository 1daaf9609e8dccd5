package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/godilite/camps-trends/internal/config"
)

func newThresholdsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Print the effective analysis thresholds as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := config.LoadThresholds(v.GetString("thresholds_file"))
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), t)
		},
	}
}

func writeYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
