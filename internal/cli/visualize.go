package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/graph"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "visualize <layout.json>",
		Short: "Render a saved layout",
		Long: `Render a saved layout.

The visualize command takes a layout.json file (produced by 'layout' or
'render -f json') and draws it. Positions are taken from the file as they
are, so this step never changes where nodes go.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd.Context(), args[0], outDir, flags)
		},
	}

	flags.addRenderFlags(cmd)
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: next to the layout)")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input, outDir string, flags pipelineFlags) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	opts := c.options(&flags)
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	cancelled := spinner.Cancelled()
	spinner.Stop()
	if cancelled {
		return ctx.Err()
	}

	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	stem := strings.TrimSuffix(filepath.Base(input), ".layout.json")
	paths, err := writeArtifacts(artifacts, opts.Formats, outDir, stem)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", filepath.Base(input))
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(l.Nodes), len(l.Levels), cacheHit)
	return nil
}
