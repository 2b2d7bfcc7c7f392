package cli

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/atlas"
	"github.com/matzehuels/cubeskin/pkg/errors"
)

// compositeOpts holds the command-line flags for the composite command.
type compositeOpts struct {
	faces  [6]string // face texture paths, indexed by atlas.Face
	output string
}

// compositeCommand creates the composite command.
func (c *CLI) compositeCommand() *cobra.Command {
	var opts compositeOpts

	cmd := &cobra.Command{
		Use:   "composite [image]",
		Short: "Composite textures into a single skin atlas",
		Long: `Composite textures into a 128x128 skin atlas.

Pass one image to use it for all six faces, or --top, --bottom, --left,
--right, --front and --back to set each face. Images of any size are
resampled to 16x16.

Examples:
  cubeskin composite stone.png -o stone_skin.png
  cubeskin composite --top log_top.png --bottom log_top.png \
    --left log.png --right log.png --front log.png --back log.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			out, err := opts.composite(args)
			if err != nil {
				return err
			}
			path := opts.outputPath(args)
			data, err := atlas.PNG(out)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			logger.Debug("wrote atlas", "path", path, "bytes", len(data))
			printSuccess("Composited skin")
			printFile(path)
			return nil
		},
	}

	for _, f := range atlas.Faces {
		cmd.Flags().StringVar(&opts.faces[f], f.String(), "", f.String()+" face texture")
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG (default <image>_skin.png or skin.png)")

	return cmd
}

func (o *compositeOpts) hasFaces() bool {
	for _, p := range o.faces {
		if p != "" {
			return true
		}
	}
	return false
}

func (o *compositeOpts) composite(args []string) (*image.NRGBA, error) {
	switch {
	case len(args) == 1 && o.hasFaces():
		return nil, errors.New(errors.ErrCodeInvalidInput, "pass either an image or face flags, not both")
	case len(args) == 1:
		img, err := decodeFile(args[0])
		if err != nil {
			return nil, err
		}
		return atlas.CompositeUniform(img)
	case !o.hasFaces():
		return nil, errors.New(errors.ErrCodeInvalidInput, "pass an image or all six face flags")
	}

	var set atlas.FaceSet
	for _, f := range atlas.Faces {
		if o.faces[f] == "" {
			return nil, errors.New(errors.ErrCodeIncompleteFaceSet, "missing --%s", f)
		}
		img, err := decodeFile(o.faces[f])
		if err != nil {
			return nil, err
		}
		set.Set(f, img)
	}
	return atlas.Composite(set)
}

func (o *compositeOpts) outputPath(args []string) string {
	if o.output != "" {
		return o.output
	}
	if len(args) == 1 {
		base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		return base + "_skin.png"
	}
	return "skin.png"
}

// decodeFile reads and decodes an image file.
func decodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	img, err := atlas.Decode(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %s", path)
	}
	return img, nil
}
