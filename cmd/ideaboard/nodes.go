package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"ideaboard/domain/core/entities"
	"ideaboard/infrastructure/di"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAddCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add an idea at a random spot on the canvas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				node, ok := c.Controller.Add(cmd.Context(), strings.Join(args, " "))
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "nothing added: text is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), node.ID)
				return nil
			})
		},
	}
}

func newListCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				nodes := c.Controller.Snapshot()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(nodes)
				}
				return printNodes(cmd, nodes)
			})
		},
	}
	cmd.Flags().Bool("json", false, "print the collection as JSON")
	return cmd
}

func printNodes(cmd *cobra.Command, nodes []entities.Node) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tX\tY\tCONTENT")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", n.ID, n.X, n.Y, n.Content)
	}
	return w.Flush()
}

func newRemoveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove an idea",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				if !c.Controller.Remove(cmd.Context(), args[0]) {
					return fmt.Errorf("node %s not found", args[0])
				}
				return nil
			})
		},
	}
}

func newMoveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID X Y",
		Short: "Move an idea to a new position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseCoordinate("x", args[1])
			if err != nil {
				return err
			}
			y, err := parseCoordinate("y", args[2])
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				if !c.Controller.Update(cmd.Context(), args[0], entities.NodePatch{X: &x, Y: &y}) {
					return fmt.Errorf("node %s not found", args[0])
				}
				return nil
			})
		},
	}
}

// parseCoordinate accepts finite numbers only; NaN and Inf cannot be saved
func parseCoordinate(axis, raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", axis, raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", axis, raw)
	}
	return f, nil
}

func newEditCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID TEXT...",
		Short: "Replace the text of an idea",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args[1:], " ")
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				if !c.Controller.Update(cmd.Context(), args[0], entities.NodePatch{Content: &content}) {
					return fmt.Errorf("node %s not found", args[0])
				}
				return nil
			})
		},
	}
}

func newExpandCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "expand ID",
		Short: "Ask the expansion service for a related idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), v, func(c *di.Container) error {
				result := <-c.Controller.ExpandAsync(cmd.Context(), args[0])
				if result.Err != nil {
					return result.Err
				}
				if result.Node == nil {
					return fmt.Errorf("node %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", result.Node.ID, result.Node.Content)
				return nil
			})
		},
	}
}
