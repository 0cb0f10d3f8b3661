package cli

import (
	"flag"
	"io"
	"time"
)

const versionString = "1.0.0"
const defaultConfigPath = "./dydcheck.toml"

type cliOptions struct {
	configPath string
	watch      bool
	quiet      bool
	verbose    bool
	version    bool
	history    bool
	window     time.Duration
	args       []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("dydcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.watch, "watch", false, "Re-check the input whenever it changes")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only log warnings and errors; skip the summary")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging, including the token dump")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVar(&opts.history, "history", false, "Print the run trend from the history store (requires db.enabled)")
	fs.DurationVar(&opts.window, "history-window", 24*time.Hour, "Moving-window duration for trend averages")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
