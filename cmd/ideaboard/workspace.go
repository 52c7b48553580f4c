package main

import (
	"fmt"
	"io"
	"os"

	"ideaboard/infrastructure/di"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the workspace as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				data, err := c.Controller.Export()
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return os.WriteFile(output, data, 0o644)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "file to write (default stdout)")
	return cmd
}

func newImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the workspace with a JSON document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				if err := c.Controller.Import(cmd.Context(), data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d ideas\n", len(c.Controller.Snapshot()))
				return nil
			})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
