package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/graph"
	"github.com/matzehuels/orgtree/pkg/outline"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		output    string
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file.org>...",
		Short: "Build the weighted header tree of an outline",
		Long: `Build the weighted header tree of an outline and save it as graph.json.

Every header becomes a node under a synthetic root. A node's weight is the
number of body-text characters under it, including everything beneath its
descendants. The output is written next to each input as <name>.graph.json
and can be fed to 'layout'.

Use "-" to read from stdin and "-o -" to write to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSingleOutput(output, args); err != nil {
				return err
			}
			opts := c.options(&flags)
			if err := opts.ValidateForParse(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return forEachInput(cmd.Context(), args, keepGoing, func(ctx context.Context, input string) error {
				return c.runParse(ctx, runner, input, output, opts)
			})
		},
	}

	flags.addParseFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip inputs that fail instead of stopping")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, cacheHit, err := runner.ParseWithCacheInfo(ctx, documentName(input), data, opts)
	if err != nil {
		return err
	}
	prog.done("Parsed " + documentName(input))

	var buf bytes.Buffer
	if err := graph.WriteGraph(res.Tree, res.Root, &buf); err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = sidecarPath(input, ".graph.json")
	}
	if err := writeOutput(outputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if outputPath == stdinName {
		return nil
	}

	printSuccess("Parsed %s", documentName(input))
	printFile(outputPath)
	printStats(res.Tree.NodeCount(), res.Levels.Levels(), cacheHit)
	printWarnings(res.Warnings)
	return nil
}

// printWarnings lists headers that were kept as body text.
func printWarnings(ws []outline.Warning) {
	const shown = 5
	for i, w := range ws {
		if i == shown {
			printDetail("… and %d more", len(ws)-shown)
			break
		}
		printWarning("line %d: %s", w.Line, w.Message)
	}
}
