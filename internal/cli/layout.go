package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/outline"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		output    string
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "layout <file.org|graph.json>...",
		Short: "Compute node positions for an outline tree",
		Long: `Compute node positions for an outline tree.

The input is either an outline or a graph.json produced by 'parse'. The root
sits at the top centre; each level below it is one row lower. Nodes of a level
share the width evenly (--strategy level) or split their parent's share
(--strategy subtree).

The output is <name>.layout.json, which 'visualize' renders.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSingleOutput(output, args); err != nil {
				return err
			}
			opts := c.options(&flags)
			opts.Formats = []string{pipeline.FormatJSON}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return forEachInput(cmd.Context(), args, keepGoing, func(ctx context.Context, input string) error {
				return c.runLayout(ctx, runner, input, output, opts)
			})
		},
	}

	flags.addParseFlags(cmd)
	flags.addLayoutFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip inputs that fail instead of stopping")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	res, err := c.loadOutline(ctx, runner, input, opts)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = documentName(input)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, res, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	cancelled := spinner.Cancelled()
	spinner.Stop()
	if cancelled {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath(input)
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := writeOutput(outputPath, data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if outputPath == stdinName {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Nodes), len(l.Levels), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// loadOutline parses an outline, or loads a saved graph.json.
func (c *CLI) loadOutline(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*outline.Result, error) {
	if isGraphFile(input) {
		t, root, err := graph.ReadGraphFile(input)
		if err != nil {
			return nil, fmt.Errorf("load graph %s: %w", input, err)
		}
		return pipeline.FromTree(t, root), nil
	}

	data, err := readInput(input)
	if err != nil {
		return nil, err
	}
	return runner.Parse(ctx, documentName(input), data, opts)
}

// layoutPath maps notes.org and notes.graph.json to notes.layout.json.
func layoutPath(input string) string {
	if stem, ok := strings.CutSuffix(input, ".graph.json"); ok {
		return stem + ".layout.json"
	}
	return sidecarPath(input, ".layout.json")
}

func isGraphFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
