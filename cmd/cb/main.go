// Command cb runs a Cb source file.
//
// Usage:
//
//	cb [options] <source.cb>
//
// Options:
//
//	--debug             Enable execution tracing and write a call-count profile
//	--max-call-depth N  Override the configured recursion limit
//	--no-warn-unreachable  Don't warn about functions never called from main
//	--version           Print version and exit
//	--help              Print help and exit
//
// Config file:
//
//	cb looks for cb.json or .cbrc in the current directory and parent
//	directories. Config file options are overridden by CLI flags.
//
// Example cb.json:
//
//	{
//	    "debug": false,
//	    "warnUnreachable": true,
//	    "maxCallDepth": 2000
//	}
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cb-lang/cb/internal/config"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/driver"
	"github.com/cb-lang/cb/pkg/api"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		debug             bool
		noWarnUnreachable bool
		maxCallDepth      int
		configFile        string
		noConfig          bool
		showVersion       bool
		showHelp          bool
	)

	flag.BoolVar(&debug, "debug", false, "Enable execution tracing and write a call-count profile")
	flag.BoolVar(&noWarnUnreachable, "no-warn-unreachable", false, "Don't warn about functions never called from main")
	flag.IntVar(&maxCallDepth, "max-call-depth", 0, "Override the configured recursion limit (0 keeps config/default)")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cb - Cb interpreter v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: cb [options] <source.cb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for cb.json or .cbrc in current and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		return 0
	}
	if showVersion {
		fmt.Printf("cb v%s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() < 1 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "error: no input file specified")
		return 1
	}

	path := flag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", path, err)
		return 1
	}

	var cfg *config.Config
	if !noConfig {
		if configFile != "" {
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: loading config file %s: %v\n", configFile, err)
				return 1
			}
		} else {
			cfg, _, err = config.Load(filepath.Dir(path))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
				return 1
			}
		}
	}

	cli := config.CLIOverrides{}
	if debug {
		t := true
		cli.Debug = &t
	}
	if noWarnUnreachable {
		f := false
		cli.WarnUnreachable = &f
	}
	if maxCallDepth > 0 {
		cli.MaxCallDepth = &maxCallDepth
	}
	opts := cfg.Merge(cli)

	result := api.Run(path, string(source), api.Options{
		Debug:           opts.Debug,
		WarnUnreachable: opts.WarnUnreachable,
		MaxCallDepth:    opts.MaxCallDepth,
	})

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return 1
	}

	fmt.Fprint(os.Stdout, result.Stdout)

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	if opts.Debug {
		if result.Trace != "" {
			fmt.Fprint(os.Stderr, result.Trace)
		}
		if len(result.Profile) > 0 {
			profPath := path + ".pprof"
			if werr := os.WriteFile(profPath, result.Profile, 0o644); werr != nil {
				fmt.Fprintf(os.Stderr, "warning: writing profile %s: %v\n", profPath, werr)
			} else {
				fmt.Fprintf(os.Stderr, "profile written to %s\n", profPath)
			}
		}
	}

	if result.Err != nil {
		dl := diagnostic.NewDiagnosticList(string(source))
		fmt.Fprint(os.Stderr, driver.FormatFatal(result.Err, dl))
		return 1
	}

	return result.ExitCode
}
