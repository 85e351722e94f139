package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/persist"
)

// exportOptions holds flags for the export command.
type exportOptions struct {
	format     string
	output     string
	rasterizer string
	scale      float64
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored diagram to a file",
		Long: `Export the stored diagram as JSON, YAML, HCL, SVG or PNG.

The format comes from --format, else from the extension of --output, else JSON.
Without --output the file is written to the current directory as diagram.<format>;
"-" writes to stdout.`,
		Example: `  archboard export
  archboard export -o docs/architecture.svg
  archboard export --format png --scale 3
  archboard export --format yaml -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rasterizer") {
				c.Config.Export.Rasterizer = opts.rasterizer
			}
			if cmd.Flags().Changed("scale") {
				c.Config.Export.Scale = opts.scale
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			return c.runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json, yaml, hcl, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or directory")
	cmd.Flags().StringVar(&opts.rasterizer, "rasterizer", "", "PNG rasterizer: canvas, graphviz, none")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor")
	cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// resolveFormat picks the export format from the flag, the output path or
// the default.
func resolveFormat(flag, output string) (persist.Format, error) {
	if flag != "" {
		return persist.ParseFormat(flag)
	}
	if output != "" && output != "-" {
		if info, err := os.Stat(output); err != nil || !info.IsDir() {
			return persist.FormatFromPath(output)
		}
	}
	return persist.FormatJSON, nil
}

func (c *CLI) runExport(cmd *cobra.Command, opts exportOptions) error {
	ctx := cmd.Context()
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	sess, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	prog := newProgress(loggerFromContext(ctx), "export", "format", format)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Exporting %s...", format)).Start()
	a, ok, err := sess.Editor.Export(ctx, format)
	spin.Stop()
	if err != nil {
		return err
	}
	if !ok {
		printWarning(c.Out, "No rasterizer configured, PNG export skipped")
		printNextStep(c.Out, "Enable one with", "archboard export --format png --rasterizer canvas")
		return nil
	}

	if opts.output == "-" {
		_, err := c.Out.Write(a.Data)
		return err
	}

	path := opts.output
	if path == "" {
		path = a.Name
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		if err := errs.ValidateExportPath(path); err != nil {
			return err
		}
	}
	written, err := a.WriteFile(path)
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	prog.done("diagram exported", "path", written, "bytes", len(a.Data))
	printSuccess(c.Out, "Exported %s", strings.ToUpper(string(format)))
	printFile(c.Out, written)
	return nil
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored diagram with a JSON or YAML document",
		Long: `Replace the stored diagram with the document in <file>. Files ending in
.yaml or .yml are read as YAML, everything else as JSON. A file that is not a
diagram document leaves the stored diagram unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			ok, err := sess.Editor.ImportFile(ctx, path)
			if err != nil {
				return err
			}
			if !ok {
				printWarning(c.Out, "%s is not a diagram document, nothing imported", path)
				return nil
			}
			printSuccess(c.Out, "Imported %s", path)
			printStats(c.Out, len(sess.Editor.Nodes()), len(sess.Editor.Edges()))
			return nil
		},
	}
}
