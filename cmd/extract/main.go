// Command extract computes per-epoch sleep features for every participant in
// a dataset directory and writes the feature table, feature list and C
// header. With -db the run is also stored in SQLite.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/banshee-data/sleep.report/internal/config"
	"github.com/banshee-data/sleep.report/internal/dataset"
	"github.com/banshee-data/sleep.report/internal/export"
	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/fsutil"
	"github.com/banshee-data/sleep.report/internal/monitoring"
	"github.com/banshee-data/sleep.report/internal/pipeline"
	"github.com/banshee-data/sleep.report/internal/store"
	"github.com/banshee-data/sleep.report/internal/version"
)

type options struct {
	configPath   string
	dataDir      string
	outDir       string
	dbPath       string
	participants string
	fourClass    bool
	quiet        bool

	// Overrides, applied only when the flag is given.
	resolution     string
	epochDuration  string
	overlap        float64
	workers        int
	spectral       bool
	includeIMU     bool
	includePPG     bool
	validOnly      bool
	dropIncomplete bool
}

func parseFlags(args []string) (*options, map[string]bool, error) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.configPath, "config", config.DefaultConfigPath, "Extraction config JSON")
	fs.StringVar(&o.dataDir, "data", "data", "Dataset root holding data_64Hz/ or data_100Hz/")
	fs.StringVar(&o.outDir, "out", "out", "Output directory")
	fs.StringVar(&o.dbPath, "db", "", "Optional SQLite file to record the run")
	fs.StringVar(&o.participants, "participants", "", "Comma-separated participant IDs (default: all)")
	fs.BoolVar(&o.fourClass, "four-class", false, "Write Wake/Light/Deep/REM labels instead of stages")
	fs.BoolVar(&o.quiet, "quiet", false, "Suppress per-participant logging")

	fs.StringVar(&o.resolution, "resolution", "", "Override resolution (64Hz or 100Hz)")
	fs.StringVar(&o.epochDuration, "epoch", "", "Override epoch duration, e.g. 30s")
	fs.Float64Var(&o.overlap, "overlap", 0, "Override epoch overlap fraction in [0, 1)")
	fs.IntVar(&o.workers, "workers", 0, "Override worker count (0 = GOMAXPROCS)")
	fs.BoolVar(&o.spectral, "spectral", false, "Override: add spectral features")
	fs.BoolVar(&o.includeIMU, "imu", true, "Override: extract IMU features")
	fs.BoolVar(&o.includePPG, "ppg", true, "Override: extract PPG features")
	fs.BoolVar(&o.validOnly, "valid-only", true, "Override: keep only W/N1/N2/N3/R epochs")
	fs.BoolVar(&o.dropIncomplete, "drop-incomplete", false, "Override: drop epochs with absent features")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// resolveConfig loads the config file and applies explicitly set flags.
func resolveConfig(o *options, set map[string]bool) (*config.ExtractionConfig, error) {
	cfg := config.EmptyExtractionConfig()
	if o.configPath != "" {
		loaded, err := config.LoadExtractionConfig(o.configPath)
		switch {
		case err == nil:
			cfg = loaded
		case set["config"]:
			return nil, err
		default:
			monitoring.Logf("using built-in defaults: %v", err)
		}
	}

	if set["resolution"] {
		cfg.Resolution = &o.resolution
	}
	if set["epoch"] {
		cfg.EpochDuration = &o.epochDuration
	}
	if set["overlap"] {
		cfg.Overlap = &o.overlap
	}
	if set["workers"] {
		cfg.Workers = &o.workers
	}
	if set["spectral"] {
		cfg.Spectral = &o.spectral
	}
	if set["imu"] {
		cfg.IncludeIMU = &o.includeIMU
	}
	if set["ppg"] {
		cfg.IncludePPG = &o.includePPG
	}
	if set["valid-only"] {
		cfg.ValidStagesOnly = &o.validOnly
	}
	if set["drop-incomplete"] {
		cfg.DropIncomplete = &o.dropIncomplete
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, set, err := parseFlags(args)
	if err != nil {
		return err
	}
	if o.quiet {
		monitoring.SetLogger(nil)
	}
	cfg, err := resolveConfig(o, set)
	if err != nil {
		return err
	}
	fc, err := cfg.FeatureConfig()
	if err != nil {
		return err
	}
	ext, err := features.NewExtractor(fc)
	if err != nil {
		return err
	}
	loader, err := dataset.NewLoader(fsutil.OSFileSystem{}, o.dataDir, cfg.GetResolution())
	if err != nil {
		return err
	}

	monitoring.Logf("sleep.report extract %s: %d features, %s epochs, %d workers",
		version.String(), len(ext.FeatureNames()), cfg.GetEpochDuration(), cfg.GetWorkers())

	runner := &pipeline.Runner{Source: loader, Extractor: ext, Workers: cfg.GetWorkers()}
	res, runErr := runner.Run(ctx, splitIDs(o.participants))
	if res == nil {
		return runErr
	}

	names := ext.FeatureNames()
	exp := &export.Exporter{OutDir: o.outDir}
	st, err := exp.WriteAll(names, res.Results, export.Options{
		ValidStagesOnly: cfg.GetValidStagesOnly(),
		DropIncomplete:  cfg.GetDropIncomplete(),
		FourClass:       o.fourClass,
	})
	if err != nil {
		return err
	}

	if o.dbPath != "" {
		if err := record(o.dbPath, cfg, names, res); err != nil {
			return err
		}
	}

	if err := res.Report.Write(stdout); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Rows written: %d (dropped %d unscored, %d incomplete)\n",
		st.Rows, st.DroppedStage, st.DroppedIncomplete)
	return runErr
}

func record(path string, cfg *config.ExtractionConfig, names []string, res *pipeline.Run) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	rec := &store.RunRecord{Version: version.String(), ConfigJSON: cfgJSON, FeatureNames: names}
	if err := s.CreateRun(rec); err != nil {
		return err
	}
	if err := s.SaveRun(rec.RunID, names, res); err != nil {
		return err
	}
	monitoring.Logf("recorded run %s in %s", rec.RunID, path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("extract failed: %v", err)
	}
}
