package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"screen-tool/src/config"
	"screen-tool/src/runtimeinit"
)

type bootstrapFunc func(runtimeinit.Options) (*runtimeinit.Runtime, error)

type globalOptions struct {
	envFile   string
	outputDir string
	grabber   string
	logLevel  string
	verbose   bool
}

func (g *globalOptions) runtimeOptions() runtimeinit.Options {
	return runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvFileOverride:   g.envFile,
			OutputDirOverride: g.outputDir,
			GrabberOverride:   g.grabber,
			LogLevelOverride:  g.logLevel,
		},
		Verbose: g.verbose,
	}
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-tool-cli"}
	}
	cmd := newRootCmd(runtimeinit.Bootstrap)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(boot bootstrapFunc) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "screen-tool-cli",
		Short:         "Capture, record and annotate screen regions without the GUI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", "", "Path to .env file (highest precedence)")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory for generated file names")
	flags.StringVar(&opts.grabber, "grabber", "", "Screenshot backend: maim or builtin")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	cmd.AddCommand(
		newShotCmd(opts, boot),
		newRecordCmd(opts, boot),
		newAnnotateCmd(opts, boot),
		newSourcesCmd(opts, boot),
	)
	return cmd
}
