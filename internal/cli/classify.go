package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/atlas"
)

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <image>...",
		Short: "Report whether textures are partially transparent",
		Long: `Report whether textures are partially transparent.

A texture is rejected for skin generation when any pixel has an alpha value
strictly between 0 and 255 after resampling to 16x16. Plain glass is exempt
during generation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var partial, failed int
			for _, path := range args {
				img, err := decodeFile(path)
				if err != nil {
					printError("%s: %v", path, err)
					failed++
					continue
				}
				b := img.Bounds()
				size := StyleDim.Render(fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
				if atlas.HasPartialAlpha(img) {
					partial++
					printWarning("%s partially transparent", path)
					printDetail("%s", size)
					continue
				}
				printSuccess("%s opaque %s", path, size)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images could not be decoded", failed, len(args))
			}
			if len(args) > 1 {
				printDetail("%d of %d partially transparent", partial, len(args))
			}
			return nil
		},
	}
}
