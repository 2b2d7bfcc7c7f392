package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/archive"
	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/errors"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
	"github.com/matzehuels/cubeskin/pkg/reference"
	"github.com/matzehuels/cubeskin/pkg/skinpack"
)

// generateOpts holds the command-line flags for the generate command.
// Empty values fall back to the config file.
type generateOpts struct {
	merge       string // resource, reference or both
	reference   string // builtin, none, a file path or a URL
	refresh     bool   // bypass cache reads
	output      string // PNG directory, or a .mcpack/.zip file
	name        string // skin pack name
	description string // skin pack description
	format      string // default output format: mcpack or zip
	key         string // skins.json serialize name
	noCache     bool   // disable the cache entirely

	extra  []string // extra PNG skins added after generation
	rename []string // old=new identifier changes
	drop   []string // identifiers removed from the pack
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <pack.zip|pack.mcpack|dir>",
		Short: "Generate block skins from a resource pack",
		Long: `Generate block skins from a resource pack.

Every full-cube block defined in the pack's blocks.json (and, optionally, the
reference table) becomes a 128x128 skin. Packs without any block definitions
fall back to one skin per texture file.

The output is a skin pack when -o ends in .mcpack or .zip, otherwise a
directory of PNG files. Before writing, --drop removes skins, --rename
changes identifiers and --extra adds image files as additional skins.

Examples:
  cubeskin generate MyPack.mcpack                       # MyPack skin pack next to it
  cubeskin generate MyPack.zip --merge both -o out.mcpack
  cubeskin generate ./MyPack --reference none -o skins/  # PNGs only
  cubeskin generate MyPack.zip --extra logo.png --rename stone=smooth_stone`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.merge, "merge", "", "merge mode when both tables exist: resource, reference, both")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "reference table: builtin, none, a file or an http(s) URL")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache reads")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory, or .mcpack/.zip file")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "skin pack name")
	cmd.Flags().StringVar(&opts.description, "description", "", "skin pack description")
	cmd.Flags().StringVar(&opts.format, "format", "", "skin pack format when -o is not given: mcpack, zip")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringSliceVar(&opts.extra, "extra", nil, "extra skin images to add (repeatable)")
	cmd.Flags().StringArrayVar(&opts.rename, "rename", nil, "rename a skin: old=new (repeatable)")
	cmd.Flags().StringSliceVar(&opts.drop, "drop", nil, "skin identifiers to leave out (repeatable)")

	return cmd
}

// withConfig fills empty flags from the config file.
func (o generateOpts) withConfig(c *CLI) generateOpts {
	cfg := c.config
	if o.merge == "" {
		o.merge = cfg.Generate.MergeMode
	}
	if o.reference == "" {
		o.reference = cfg.Generate.Reference
	}
	o.refresh = o.refresh || cfg.Generate.Refresh
	if o.name == "" {
		o.name = cfg.Pack.Name
	}
	if o.description == "" {
		o.description = cfg.Pack.Description
	}
	if o.format == "" {
		o.format = cfg.Pack.Format
	}
	o.key = cfg.Pack.Key
	return o
}

func (c *CLI) runGenerate(ctx context.Context, path string, opts generateOpts) error {
	logger := loggerFromContext(ctx)
	opts = opts.withConfig(c)

	format, err := skinpack.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	var mode blocks.MergeMode
	if opts.merge != "" {
		m, err := blocks.ParseMergeMode(opts.merge)
		if err != nil {
			return err
		}
		mode = m
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	loader := newLoader(opts.reference, runner, logger)
	loader.Refresh = opts.refresh
	ref := loader.Load(ctx)
	if ref != nil {
		printInfo("Using %s (%d blocks)", reference.Describe(opts.reference), ref.Len())
	}

	arc, closeArchive, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer closeArchive()

	if mode == "" && ref != nil {
		mode, err = chooseMergeMode(arc, ref)
		if err != nil {
			return err
		}
	}

	spinner := newSpinnerWithContext(ctx, "Reading archive")
	spinner.Start()
	res, err := runner.Generate(ctx, arc, pipeline.Options{
		MergeMode: mode,
		Reference: ref,
		Progress:  spinner,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	switch {
	case spinner.Cancelled():
		spinner.Stop()
		return context.Canceled
	case err != nil:
		spinner.StopWithError("Generation failed")
		if errors.Is(err, errors.ErrCodeInvalidMergeMode) {
			printDetail("Pass --merge resource, reference or both")
		}
		return err
	case len(res.Skins) > 0:
		spinner.StopWithSuccess(fmt.Sprintf("Generated %d skins", len(res.Skins)))
	default:
		spinner.Stop()
	}

	printSkipSummary(res)
	if len(res.Skins) == 0 && len(opts.extra) == 0 {
		return errors.New(errors.ErrCodeMissingAsset, "no full blocks found to process")
	}
	printStats(len(res.Skins), len(res.Skipped), res.Stats.CacheHits)

	prog := newProgress(logger)
	pack, out, err := writeSkins(res.Skins, opts, format, path)
	if err != nil {
		return err
	}
	prog.done("Wrote " + out)
	if archive.IsPackFile(out) {
		printPack(pack)
	}
	printFile(out)
	if !archive.IsPackFile(out) {
		printNextStep("Package as a skin pack", fmt.Sprintf("%s generate %s -o %s", appName, path, pack.FileName(format)))
	}
	return nil
}

// chooseMergeMode asks for a merge mode when the pack ships its own table
// and a reference table is loaded. Without a terminal it returns "" and the
// pipeline reports the missing choice.
func chooseMergeMode(arc archive.Archive, ref *blocks.Table) (blocks.MergeMode, error) {
	quiet := log.New(io.Discard)
	resource := archive.LoadResourceTable(arc, archive.Scan(arc), quiet)
	if !blocks.NeedsChoice(resource, ref) || !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", nil
	}

	final, err := tea.NewProgram(NewMergeModeModel(resource.Len(), ref.Len())).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(MergeModeModel)
	if !ok || m.Selected == "" {
		return "", context.Canceled
	}
	printInfo("Merge mode: %s", StyleHighlight.Render(string(m.Selected)))
	return m.Selected, nil
}

// writeSkins writes the skins to opts.output and returns the pack and the
// path written.
// An empty output writes a skin pack named after the pack into the input's
// directory.
func writeSkins(skins []pipeline.Skin, opts generateOpts, format skinpack.Format, input string) (*skinpack.Pack, string, error) {
	pack, err := skinpack.FromSkins(opts.name, opts.description, skins)
	if err != nil {
		return nil, "", err
	}
	if opts.key != "" {
		pack.Key = opts.key
	}
	if err := editPack(pack, opts); err != nil {
		return nil, "", err
	}
	if pack.Len() == 0 {
		return nil, "", errors.New(errors.ErrCodeMissingAsset, "no skins left to write")
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(filepath.Dir(filepath.Clean(input)), pack.FileName(format))
	}

	if archive.IsPackFile(output) {
		return pack, output, writePackFile(pack, output)
	}
	return pack, output, writePNGDir(pack, output)
}

// editPack applies --drop, --rename and --extra, in that order.
func editPack(pack *skinpack.Pack, opts generateOpts) error {
	for _, id := range opts.drop {
		i := pack.Index(id)
		if i < 0 {
			return errors.New(errors.ErrCodeNotFound, "--drop: no skin %q", id)
		}
		if err := pack.Remove(i); err != nil {
			return err
		}
	}
	for _, r := range opts.rename {
		from, to, ok := strings.Cut(r, "=")
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "--rename %q: want old=new", r)
		}
		i := pack.Index(from)
		if i < 0 {
			return errors.New(errors.ErrCodeNotFound, "--rename: no skin %q", from)
		}
		if err := pack.Rename(i, to, ""); err != nil {
			return err
		}
	}
	for _, path := range opts.extra {
		img, err := decodeFile(path)
		if err != nil {
			return err
		}
		data, err := atlas.PNG(img)
		if err != nil {
			return err
		}
		e := pack.AddExtra(filepath.Base(path), data)
		printDetail("Added %s as %s", path, e.Identifier)
	}
	return nil
}

func writePackFile(pack *skinpack.Pack, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pack.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writePNGDir(pack *skinpack.Pack, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, e := range pack.Entries {
		if err := os.WriteFile(filepath.Join(dir, e.Identifier+".png"), e.PNG, 0o644); err != nil {
			return err
		}
	}
	return nil
}
