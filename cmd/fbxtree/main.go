// fbxtree decodes binary FBX files and prints their node hierarchy,
// attribute rows and diagnostics.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/fbxtree/internal/config"
	"github.com/danmuck/fbxtree/internal/decode"
	"github.com/danmuck/fbxtree/internal/dump"
	"github.com/danmuck/fbxtree/internal/logging"
	"github.com/danmuck/fbxtree/internal/observability"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := execute(args, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "fbxtree: %v\n", err)
		return 1
	}
	return 0
}

type flags struct {
	set        *pflag.FlagSet
	configPath string
	format     string
	output     string
	attributes bool
	logLevel   string
	metricsOut string
	maxArray   uint32
	maxString  uint32
	maxDepth   int
	help       bool
}

func newFlags(stderr io.Writer) *flags {
	f := &flags{set: pflag.NewFlagSet("fbxtree", pflag.ContinueOnError)}
	defaults := config.DefaultConfig()
	s := f.set
	s.SetOutput(stderr)
	s.StringVar(&f.configPath, "config", "", "path to an fbxtree.toml config file")
	s.StringVarP(&f.format, "format", "f", string(defaults.Format), "output format: text, json, yaml or cbor")
	s.StringVarP(&f.output, "output", "o", "", "write output to this file instead of stdout")
	s.BoolVarP(&f.attributes, "attributes", "a", defaults.ShowAttributes, "include attribute rows")
	s.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "log level: trace, debug, info, warn, error or off")
	s.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus metrics to this textfile after decoding")
	s.Uint32Var(&f.maxArray, "max-array-elements", defaults.Limits.MaxArrayElements, "largest accepted array attribute (0 disables)")
	s.Uint32Var(&f.maxString, "max-string-bytes", defaults.Limits.MaxStringBytes, "largest accepted string or binary attribute (0 disables)")
	s.IntVar(&f.maxDepth, "max-depth", defaults.Limits.MaxDepth, "deepest accepted node nesting (0 disables)")
	s.BoolVarP(&f.help, "help", "h", false, "show help")
	return f
}

// apply overrides cfg with every flag given on the command line.
func (f *flags) apply(cfg *config.Config) {
	changed := f.set.Changed
	if changed("format") {
		cfg.Format = dump.Format(f.format)
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("attributes") {
		cfg.ShowAttributes = f.attributes
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("metrics-out") {
		cfg.MetricsOut = f.metricsOut
	}
	if changed("max-array-elements") {
		cfg.Limits.MaxArrayElements = f.maxArray
	}
	if changed("max-string-bytes") {
		cfg.Limits.MaxStringBytes = f.maxString
	}
	if changed("max-depth") {
		cfg.Limits.MaxDepth = f.maxDepth
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	f := newFlags(stderr)
	if err := f.set.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if f.help {
		printHelp(stdout, f.set)
		return nil
	}

	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files := f.set.Args()
	if len(files) == 0 {
		printHelp(stderr, f.set)
		return errors.New("no input files")
	}

	logging.ConfigureRuntime()
	logging.SetLevel(cfg.LogLevel)

	out := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer file.Close()
		out = file
	}

	decoder := decode.NewDecoder(
		decode.WithLimits(cfg.Limits),
		decode.WithLogger(logging.For("decode")),
	)
	failed := 0
	for _, path := range files {
		doc := decoder.DecodeFile(path)
		if doc.Err != nil {
			failed++
		}
		snap, err := dump.NewSnapshot(doc, cfg.ShowAttributes)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", path, err)
		}
		if err := dump.Write(out, cfg.Format, snap); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if cfg.MetricsOut != "" {
		if err := observability.WriteTextfile(cfg.MetricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(files))
	}
	return nil
}

func printHelp(w io.Writer, s *pflag.FlagSet) {
	fmt.Fprintf(w, `fbxtree decodes binary FBX files and prints their node tree.

Usage:
  fbxtree [flags] FILE...

Flags given on the command line override values from --config.

Flags:
%s`, s.FlagUsages())
}
