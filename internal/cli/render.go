package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/pkg/pipeline"
)

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		outDir    string
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "render <file.org>...",
		Short: "Draw an outline tree as HTML, SVG, PNG, PDF or DOT",
		Long: `Draw an outline tree in one step: parse, layout and render.

Outputs are named after the input with its extension folded in, so notes.org
becomes notes_org.html, notes_org.svg and so on. They are written next to the
input unless --output names a directory.

Formats:
  html  interactive page (pan, zoom, hover for weights)
  svg   static node-link diagram
  png   raster of the SVG (needs rsvg-convert)
  pdf   vector document (needs rsvg-convert)
  dot   Graphviz source with pinned positions
  json  the computed layout

Intermediate results are cached, so re-rendering with other formats is fast.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(&flags)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return forEachInput(cmd.Context(), args, keepGoing, func(ctx context.Context, input string) error {
				return c.runRender(ctx, runner, input, outDir, opts)
			})
		},
	}

	flags.addParseFlags(cmd)
	flags.addLayoutFlags(cmd)
	flags.addRenderFlags(cmd)
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: next to each input)")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip inputs that fail instead of stopping")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input, outDir string, opts pipeline.Options) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+documentName(input)+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, documentName(input), data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	cancelled := spinner.Cancelled()
	spinner.Stop()
	if cancelled {
		return ctx.Err()
	}

	if outDir == "" && input != stdinName {
		outDir = filepath.Dir(input)
	}
	paths, err := writeArtifacts(result.Artifacts, opts.Formats, outDir, documentName(input))
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", documentName(input))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.Levels, result.CacheInfo.RenderHit)
	printWarnings(result.Outline.Warnings)
	return nil
}

// writeArtifacts writes one file per format into dir, named by
// [pipeline.OutputName], and returns the paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, dir, document string) ([]string, error) {
	var paths []string
	for _, format := range slices.Compact(slices.Clone(formats)) {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output produced", format)
		}
		path := filepath.Join(dir, pipeline.OutputName(document, format))
		if err := writeOutput(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
