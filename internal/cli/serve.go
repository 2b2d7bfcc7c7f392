package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cubeskin/pkg/reference"
	"github.com/matzehuels/cubeskin/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	reference string
	noCache   bool
	maxUpload int64
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Routes:
  GET  /healthz
  POST /v1/composite   multipart "texture", or one field per face
  POST /v1/classify    multipart "texture"
  POST /v1/packs       multipart "pack", query merge, name, description, format

The reference table is loaded once at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if opts.addr == "" {
				opts.addr = c.config.Server.Addr
			}
			if opts.reference == "" {
				opts.reference = c.config.Generate.Reference
			}

			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			ref := newLoader(opts.reference, runner, logger).Load(ctx)
			if ref != nil {
				printInfo("Using %s (%d blocks)", reference.Describe(opts.reference), ref.Len())
			}

			srv := server.New(server.Config{
				Runner:    runner,
				Reference: ref,
				Logger:    logger,
				MaxUpload: opts.maxUpload,
			})
			printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(opts.addr)))
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "reference table: builtin, none, a file or an http(s) URL")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&opts.maxUpload, "max-upload", server.DefaultMaxUpload, "maximum request body in bytes")

	return cmd
}

// displayAddr fills in localhost for addresses without a host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
