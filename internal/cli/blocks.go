package cli

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/archive"
	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
)

const statusOK = "ok"

// blocksOpts holds the command-line flags for the blocks command.
type blocksOpts struct {
	merge     string
	reference string
	skipped   bool // only list skipped blocks
}

// blocksCommand creates the blocks command.
func (c *CLI) blocksCommand() *cobra.Command {
	var opts blocksOpts

	cmd := &cobra.Command{
		Use:   "blocks <pack>",
		Short: "Show how each block of a pack resolves",
		Long: `Show how each block of a pack resolves.

Runs the same analysis as generate without writing anything and prints one
row per block: the textures it uses, or why it was skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBlocks(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.merge, "merge", "", "merge mode when both tables exist: resource, reference, both")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "reference table: builtin, none, a file or an http(s) URL")
	cmd.Flags().BoolVar(&opts.skipped, "skipped", false, "only list skipped blocks")

	return cmd
}

func (c *CLI) runBlocks(ctx context.Context, packPath string, opts blocksOpts) error {
	logger := loggerFromContext(ctx)
	if opts.merge == "" {
		opts.merge = c.config.Generate.MergeMode
	}
	if opts.reference == "" {
		opts.reference = c.config.Generate.Reference
	}

	var mode blocks.MergeMode
	if opts.merge != "" {
		m, err := blocks.ParseMergeMode(opts.merge)
		if err != nil {
			return err
		}
		mode = m
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	ref := newLoader(opts.reference, runner, logger).Load(ctx)

	arc, closeArchive, err := archive.Open(packPath)
	if err != nil {
		return err
	}
	defer closeArchive()

	if mode == "" && ref != nil {
		if mode, err = chooseMergeMode(arc, ref); err != nil {
			return err
		}
	}

	res, err := runner.Generate(ctx, arc, pipeline.Options{
		MergeMode: mode,
		Reference: ref,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	rows := blockRows(res, opts.skipped)
	if len(rows) == 0 {
		printInfo("No blocks to show")
		return nil
	}
	fmt.Println(renderBlockTable(rows))
	printStats(len(res.Skins), len(res.Skipped), res.Stats.CacheHits)
	return nil
}

// blockRows turns a run result into table rows sorted by block key.
func blockRows(res *pipeline.Result, skippedOnly bool) []blockRow {
	var rows []blockRow
	if !skippedOnly {
		for _, s := range res.Skins {
			rows = append(rows, blockRow{
				Key:    s.Source,
				Faces:  faceSummary(s.Faces),
				Status: statusOK,
				Detail: s.Identifier,
				Swatch: atlas.Swatch(s.Image),
			})
		}
	}
	for _, s := range res.Skipped {
		rows = append(rows, blockRow{
			Key:    s.Key,
			Status: string(s.Reason),
			Detail: s.Detail,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// faceSummary lists the distinct texture names of a skin in face order.
func faceSummary(faces pipeline.FaceTextures) string {
	seen := make(map[string]bool, len(faces))
	var names []string
	for _, p := range faces {
		if p == "" {
			continue
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
