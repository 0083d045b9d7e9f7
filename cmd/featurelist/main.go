// Command featurelist prints the canonical ordered feature list, or writes
// feature_list.txt and feature_indices.h for the on-device build.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/sleep.report/internal/export"
	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/fsutil"
)

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("featurelist", flag.ContinueOnError)
	imu := fs.Bool("imu", true, "Include IMU features")
	ppg := fs.Bool("ppg", true, "Include PPG features")
	spectral := fs.Bool("spectral", false, "Include spectral features")
	header := fs.Bool("header", false, "Print the C header instead of the list")
	out := fs.String("out", "", "Write feature_list.txt and feature_indices.h into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := features.Config{
		Modalities: features.Modalities{IMU: *imu, PPG: *ppg},
		Spectral:   *spectral,
	}
	names := features.FeatureNames(cfg)
	if len(names) == 0 {
		return fmt.Errorf("no modality selected")
	}

	if *out != "" {
		return writeFiles(fsutil.OSFileSystem{}, *out, names)
	}
	if *header {
		return export.WriteCHeader(stdout, names)
	}
	return export.WriteFeatureList(stdout, names)
}

func writeFiles(fsys fsutil.FileSystem, dir string, names []string) error {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := []struct {
		name  string
		write func(io.Writer, []string) error
	}{
		{export.FeatureListFile, export.WriteFeatureList},
		{export.HeaderFile, export.WriteCHeader},
	}
	for _, f := range files {
		w, err := fsys.Create(filepath.Join(dir, f.name))
		if err != nil {
			return err
		}
		if err := f.write(w, names); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		log.Printf("wrote %s/%s (%d features)", dir, f.name, len(names))
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("featurelist: %v", err)
	}
}
