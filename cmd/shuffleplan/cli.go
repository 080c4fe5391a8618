// Command shuffleplan reads a test-harness description of free memory
// and requested byte-range moves, and prints the ordered copy sequence
// that relocates every move, evicting pending moves into scratch space
// where a direct placement isn't possible.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mattkeenan/shuffleplan/addrmap"
	"github.com/mattkeenan/shuffleplan/internal/config"
	"github.com/mattkeenan/shuffleplan/internal/shufflelog"
	"github.com/mattkeenan/shuffleplan/memaddr"
	"github.com/mattkeenan/shuffleplan/planner"
)

// output is where emitted copies and diagnostics are written; tests
// can swap it out to capture output without touching stdout.
var output io.Writer = os.Stdout

var inputFlag = &cli.StringFlag{
	Name:     "input",
	Aliases:  []string{"i"},
	Usage:    "hex-triple harness file describing free regions and requested moves",
	Required: true,
}

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "set the logger to debug level",
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "optional TOML run configuration",
}

var dumpMapFlag = &cli.BoolFlag{
	Name:  "dump-map",
	Usage: "after planning, print the coalesced address map parsed from the input (the planner's working map is not shown)",
}

func planCmd(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	level := shufflelog.ParseLevel(cfg.Planner.LogLevel)
	if c.Bool("verbose") {
		level = shufflelog.DebugLevel
	}
	log := shufflelog.New(level)

	f, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	moves, mm, err := parseHarness(f)
	if err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	out, err := planner.Compute(moves, mm, planner.Options{
		Logger:           log,
		StrictInvariants: cfg.Planner.StrictInvariants,
	})
	if err != nil {
		return err
	}

	for _, m := range out {
		fmt.Fprintln(output, formatCopy(m))
	}

	if c.Bool("dump-map") {
		dumpMap(mm)
	}
	return nil
}

func dumpMap(mm *addrmap.Map) {
	fmt.Fprintf(output, "# address map (bound 0x%08x):\n", mm.Bound())
	mm.Regions(func(rng memaddr.Range, kind addrmap.RegionKind) bool {
		fmt.Fprintf(output, "#   [0x%08x,0x%08x) %s\n", rng.Start, rng.End(), kind)
		return true
	})
}

// CLI builds the shuffleplan command-line application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "shuffleplan"
	app.Usage = "compute a byte-range relocation copy schedule from a test-harness description"
	app.Flags = []cli.Flag{inputFlag, verboseFlag, configFlag, dumpMapFlag}
	app.Action = planCmd
	app.ExitErrHandler = func(c *cli.Context, err error) {
		// overridden so main can choose the exit code itself, and so
		// tests can invoke the app repeatedly without the process exiting
	}
	return app
}
