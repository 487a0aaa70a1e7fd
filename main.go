package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mipmapgen/config"
	"mipmapgen/icons"
	"mipmapgen/watcher"
)

func main() {
	// LOG_LEVEL=debug for per-density detail
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.Fatal(err)
	}
}

// run parses args, writes the icon set and, with -watch, keeps
// regenerating it until interrupted
func run(args []string, stdout io.Writer) error {
	var (
		configPath string
		envPath    string
		source     string
		outputDir  string
		filenames  string
		watch      bool
	)
	fs := flag.NewFlagSet("mipmapgen", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&envPath, "env", ".env", "dotenv file (ignored if missing)")
	fs.StringVar(&source, "source", "", "source image, overrides config")
	fs.StringVar(&outputDir, "out", "", "Android res directory, overrides config")
	fs.StringVar(&filenames, "filenames", "", "comma-separated output file names, overrides config")
	fs.BoolVar(&watch, "watch", false, "regenerate when the source image changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(envPath); err != nil {
		return errors.Wrap(err, "failed to load env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if source != "" {
		cfg.Source = source
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if filenames != "" {
		cfg.Filenames = strings.Split(filenames, ",")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid options")
	}

	gen := icons.NewGenerator(cfg)

	results, err := gen.Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate icons")
	}
	printResults(stdout, results)
	fmt.Fprintln(stdout, "\nAll icons generated successfully!")

	if !watch {
		return nil
	}

	w, err := watcher.NewWatcher(cfg, gen)
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	if err := w.Start(); err != nil {
		return errors.Wrap(err, "failed to start watcher")
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for event := range w.Events() {
			if event.Err != nil {
				continue
			}
			printResults(stdout, event.Results)
		}
	}()

	logrus.Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logrus.Info("Shutting down...")
	err = w.Stop()
	<-printed
	return err
}

func printResults(stdout io.Writer, results []icons.Result) {
	for _, r := range results {
		fmt.Fprintf(stdout, "Created %dx%d icons in %s\n", r.Density.Size, r.Density.Size, r.Density.Folder)
	}
}
