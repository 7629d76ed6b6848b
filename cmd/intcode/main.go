// Intcode CLI - loads an Intcode program and drives a machine with it
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	trace := flag.Bool("trace", false, "Log every executed instruction")
	interactive := flag.Bool("i", false, "Read further inputs from stdin while the program waits for input")
	disasm := flag.Bool("d", false, "Disassemble the program instead of running it")
	inputs := flag.String("in", "", "Inputs for the first run (e.g. '1,2,3')")
	patches := flag.String("set", "", "Memory patches applied before running (e.g. '1=12,2=2')")
	imageIn := flag.String("image", "", "Load the program from a CBOR image instead of text")
	imageOut := flag.String("image-out", "", "Write the loaded program as a CBOR image")
	configDir := flag.String("c", "", "Directory containing intcode.toml (default: search upward from cwd)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: intcode [options] [program.txt]\n\n")
		fmt.Fprintf(os.Stderr, "Runs an Intcode program and prints its outputs, one line per run or resume.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  intcode -in 1 day09.txt          # Run with input 1\n")
		fmt.Fprintf(os.Stderr, "  intcode -set 1=12,2=2 day02.txt  # Patch noun/verb, then run\n")
		fmt.Fprintf(os.Stderr, "  intcode -i day15.txt             # Feed inputs interactively\n")
		fmt.Fprintf(os.Stderr, "  intcode -d day05.txt             # Disassemble\n")
		fmt.Fprintf(os.Stderr, "  intcode -c ./puzzle              # Use ./puzzle/intcode.toml\n")
	}
	flag.Parse()

	cfg, err := loadManifest(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbosity := 0
	traceRun := *trace
	if cfg != nil {
		verbosity = cfg.Run.Verbosity
		traceRun = traceRun || cfg.Run.Trace
	}
	if *verbose && verbosity < 1 {
		verbosity = 1
	}
	configureLogging(verbosity, traceRun)

	opts := options{
		interactive: *interactive,
		disassemble: *disasm,
		imageIn:     *imageIn,
		imageOut:    *imageOut,
	}
	if flag.NArg() > 0 {
		opts.programPath = flag.Arg(0)
	}
	if cfg != nil {
		if err := opts.applyManifest(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *inputs != "" {
		opts.inputs = *inputs
	}
	if *patches != "" {
		opts.patches = *patches
	}

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadManifest loads intcode.toml from dir, or searches upward from the
// working directory when dir is empty.
func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		log.Warningf("cannot determine working directory, skipping %s lookup: %v", manifest.FileName, err)
		return nil, nil
	}
	return manifest.FindAndLoad(cwd)
}

// configureLogging sets the global level from verbosity. Tracing opens the
// machine logger to Debug so every executed instruction is logged.
func configureLogging(verbosity int, trace bool) {
	commonlog.Configure(verbosity, nil)
	if trace {
		commonlog.SetMaxLevel(commonlog.VerbosityToMaxLevel(verbosity), "intcode")
		commonlog.SetMaxLevel(commonlog.Debug, "intcode", "vm")
	}
}
