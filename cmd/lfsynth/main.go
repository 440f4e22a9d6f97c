package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"lfsynth/internal/models"
	"lfsynth/pkg/config"
	"lfsynth/pkg/pipeline"
)

var commandHelp = map[string]string{
	"focalstack": `focalstack turns a 4D light field into a 3D focal stack. The five arguments
are the lenslet width, height, the minimum alpha, the maximum alpha, and the
step size between adjacent depths (alpha is slope in line space). Frames are
written as a numbered sequence, or as one animated image when -out ends in .gif.

Usage: lfsynth -in lf.png -out stack.png focalstack 16 16 -1 1 0.1`,

	"warp": `warp treats the -index image as coordinates (within [0, 1]) into the light
field in -in, and samples it quadrilinearly. The two arguments are the width
and height of each lenslet. The index image must have 4 channels holding the
s, t, u and v coordinates in that order. An extra argument 'quick' switches
to nearest neighbour sampling.

Usage: lfsynth -in lf.png -index lfmap.png -out out.png warp 8 8 [quick]`,

	"point": `point colors a single 3D point white in the light field. The five arguments
are the lenslet width and height, and then the x, y and z coordinates of the
point. x and y should be in the range [0, 1], while z is disparity; z = 0 lies
on the focal plane. Without -out the input is overwritten.

Usage: lfsynth -in lf.png -out newlf.png point 16 16 0.5 0.5 0.1`,

	"views": `views saves every sub-aperture view of the light field into the -out
directory, upscaled by output.viewScale, plus a contact sheet of all views.
The two arguments are the lenslet width and height.

Usage: lfsynth -in lf.png -out views views 16 16`,

	"init-config": `init-config writes a configuration file with default values to -config.

Usage: lfsynth -config lfsynth.yaml init-config`,

	"help": `help prints the list of commands, or the help text of one command.

Usage: lfsynth help [command]`,
}

// defaultOutputs apply when -out is not given
var defaultOutputs = map[string]string{
	"focalstack": "focalstack.png",
	"warp":       "warped.png",
	"views":      "views",
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: lfsynth [flags] <command> [args]\n\nCommands:\n")
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(flag.CommandLine.Output(), "  %s\n", name)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nFlags:\n")
	flag.PrintDefaults()
}

func printHelp(args []string) {
	if len(args) == 0 {
		usage()
		return
	}
	text, ok := commandHelp[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", args[0])
		usage()
		os.Exit(2)
	}
	fmt.Println(text)
}

// usageExit reports a malformed command line and exits before any processing
func usageExit(cmd string, err error) {
	fmt.Fprintf(os.Stderr, "%v\n\n", err)
	if text, ok := commandHelp[cmd]; ok {
		fmt.Fprintln(os.Stderr, text)
	} else {
		usage()
	}
	os.Exit(2)
}

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "lfsynth.yaml", "Configuration file")
	input := flag.String("in", "", "Lenslet image holding the light field")
	index := flag.String("index", "", "4-channel index map for warp")
	output := flag.String("out", "", "Output file (directory for views)")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: processing.numCores)")
	verbose := flag.Bool("verbose", true, "Print processing steps")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save sub-aperture views before processing")
	intermediaryDir := flag.String("intermediary-dir", "", "Directory to save intermediary results")
	gamma := flag.Float64("gamma", 1, "Gamma applied to output images")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	switch cmd {
	case "help":
		printHelp(args)
		return
	case "init-config":
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to create config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Parse positional arguments before touching any file
	var run func(*pipeline.Processor) error
	switch cmd {
	case "focalstack":
		fp, err := models.ParseFocalStack(args)
		if err != nil {
			usageExit(cmd, err)
		}
		run = func(p *pipeline.Processor) error { return p.RunFocalStack(fp) }
	case "warp":
		wp, err := models.ParseWarp(args)
		if err != nil {
			usageExit(cmd, err)
		}
		if *index == "" {
			usageExit(cmd, fmt.Errorf("%w: warp requires -index", models.ErrUsage))
		}
		run = func(p *pipeline.Processor) error { return p.RunWarp(wp) }
	case "point":
		pp, err := models.ParsePoint(args)
		if err != nil {
			usageExit(cmd, err)
		}
		run = func(p *pipeline.Processor) error { return p.RunPoint(pp) }
	case "views":
		vp, err := models.ParseViews(args)
		if err != nil {
			usageExit(cmd, err)
		}
		run = func(p *pipeline.Processor) error { return p.RunViews(vp) }
	default:
		usageExit(cmd, fmt.Errorf("%w: unknown command %q", models.ErrUsage, cmd))
	}
	if *input == "" {
		usageExit(cmd, fmt.Errorf("%w: %s requires -in", models.ErrUsage, cmd))
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given explicitly override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "verbose":
			cfg.Output.Verbose = *verbose
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "gamma":
			cfg.Output.Gamma = *gamma
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	out := *output
	if out == "" {
		out = defaultOutputs[cmd]
	}

	params := &pipeline.Params{
		Input:                   *input,
		Index:                   *index,
		Output:                  out,
		NumCores:                cfg.Processing.NumCores,
		Verbose:                 cfg.Output.Verbose,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
		Gamma:                   cfg.Output.Gamma,
		JPEGQuality:             cfg.Output.JPEGQuality,
		GIFDelay:                cfg.Output.GIFDelay,
		ViewScale:               cfg.Output.ViewScale,
		ContactCell:             cfg.Output.ContactCell,
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("LIGHT FIELD SYNTHESIS")
		fmt.Printf("Command: %s, cores: %d\n", cmd, cfg.Processing.NumCores)
		fmt.Println("================================")
	}

	processor := pipeline.NewProcessor(params)

	startTime := time.Now()
	if err := run(processor); err != nil {
		if errors.Is(err, models.ErrUsage) {
			usageExit(cmd, err)
		}
		log.Fatalf("%s failed: %v", cmd, err)
	}
	processingTime := time.Since(startTime)

	if cfg.Output.Verbose {
		fmt.Printf("\n%s completed successfully in %.2f seconds!\n", cmd, processingTime.Seconds())
		fmt.Println("Files written:")
		for _, path := range processor.Written() {
			fmt.Printf("- %s\n", path)
		}
		if cfg.Output.SaveIntermediaryResults {
			fmt.Printf("\nIntermediary results saved to: %s\n", cfg.Output.IntermediaryDir)
		}
	}
}
