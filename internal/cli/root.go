package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Archboard edits software architecture diagrams",
		Long: `Archboard is an editor for software architecture diagrams: services, databases,
queues, external systems and workers connected by typed edges. The diagram is
saved after every change and can be exported as JSON, YAML, HCL, SVG or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/archboard/config.toml)")
	pf.StringVar(&c.flags.envFile, "env-file", defaultEnvFile, "environment file to load")
	pf.StringVar(&c.flags.backend, "backend", "", "store backend: file, memory, null, redis, mongo")
	pf.StringVar(&c.flags.storeDir, "store-dir", "", "directory of the file store")
	pf.StringVar(&c.flags.namespace, "namespace", "", "prefix for store keys")
	pf.StringVar(&c.flags.key, "key", "", "store key holding the diagram")
	root.RegisterFlagCompletionFunc("backend", completeBackends)

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}
