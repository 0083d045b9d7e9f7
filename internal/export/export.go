// Package export writes extraction output: the per-epoch feature table, the
// ordered feature list consumed by the on-device replica, and a C header
// with the feature indices.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/sleep.report/internal/dataset"
	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/fsutil"
	"github.com/banshee-data/sleep.report/internal/pipeline"
	"github.com/banshee-data/sleep.report/internal/version"
)

// Output file names.
const (
	FeaturesFile    = "features.csv"
	FeatureListFile = "feature_list.txt"
	HeaderFile      = "feature_indices.h"

	participantColumn = "participant"
)

// Options filter and shape the feature table.
type Options struct {
	// ValidStagesOnly drops epochs whose label is not W, N1, N2, N3 or R.
	ValidStagesOnly bool
	// DropIncomplete drops epochs missing any target feature.
	DropIncomplete bool
	// FourClass replaces stage labels with Wake/Light/Deep/REM.
	FourClass bool
}

// Stats counts rows written and dropped by WriteFeatureTable.
type Stats struct {
	Rows              int
	DroppedStage      int
	DroppedIncomplete int
}

// WriteFeatureTable writes one CSV row per epoch: the feature columns in
// names order, then Sleep_Stage and participant. Absent features are empty
// cells.
func WriteFeatureTable(w io.Writer, names []string, results []pipeline.ParticipantResult, opts Options) (Stats, error) {
	var st Stats
	cw := csv.NewWriter(w)
	header := append(append([]string(nil), names...), features.LabelColumn, participantColumn)
	if err := cw.Write(header); err != nil {
		return st, err
	}

	row := make([]string, len(header))
	for _, pr := range results {
		for _, v := range pr.Result.Vectors {
			label := v.Label
			if opts.ValidStagesOnly && !dataset.IsScoredStage(label) {
				st.DroppedStage++
				continue
			}
			dense := v.Dense(names)
			if opts.DropIncomplete && hasNaN(dense) {
				st.DroppedIncomplete++
				continue
			}
			if opts.FourClass {
				if class, ok := dataset.FourClass(label); ok {
					label = class
				}
			}
			for i, x := range dense {
				row[i] = formatValue(x)
			}
			row[len(names)] = label
			row[len(names)+1] = pr.Participant
			if err := cw.Write(row); err != nil {
				return st, err
			}
			st.Rows++
		}
	}
	cw.Flush()
	return st, cw.Error()
}

func hasNaN(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

func formatValue(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// WriteFeatureList writes the ordered names as "NNN: name" lines under a
// comment header.
func WriteFeatureList(w io.Writer, names []string) error {
	var b strings.Builder
	b.WriteString("# Feature list for 4-class sleep stage model\n")
	b.WriteString("# Order must match on-device feature extraction\n")
	fmt.Fprintf(&b, "# Total features: %d\n", len(names))
	fmt.Fprintf(&b, "# Generated by %s\n\n", version.String())
	for i, n := range names {
		fmt.Fprintf(&b, "%3d: %s\n", i, n)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCHeader writes an include file mapping each feature name to its
// vector index.
func WriteCHeader(w io.Writer, names []string) error {
	var b strings.Builder
	b.WriteString("// Generated feature indices. Do not edit.\n")
	fmt.Fprintf(&b, "// %s\n", version.String())
	b.WriteString("#ifndef FEATURE_INDICES_H\n#define FEATURE_INDICES_H\n\n")
	fmt.Fprintf(&b, "#define FEATURE_COUNT %d\n\n", len(names))
	b.WriteString("enum feature_index {\n")
	for i, n := range names {
		fmt.Fprintf(&b, "    FEAT_%s = %d,\n", strings.ToUpper(n), i)
	}
	b.WriteString("};\n\n#endif // FEATURE_INDICES_H\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Exporter writes all outputs into one directory.
type Exporter struct {
	FS     fsutil.FileSystem
	OutDir string
}

// WriteAll writes the feature table, feature list and C header.
func (e *Exporter) WriteAll(names []string, results []pipeline.ParticipantResult, opts Options) (Stats, error) {
	fsys := e.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if err := fsys.MkdirAll(e.OutDir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create output dir: %w", err)
	}

	var st Stats
	err := e.writeFile(fsys, FeaturesFile, func(w io.Writer) error {
		var err error
		st, err = WriteFeatureTable(w, names, results, opts)
		return err
	})
	if err != nil {
		return st, err
	}
	if err := e.writeFile(fsys, FeatureListFile, func(w io.Writer) error { return WriteFeatureList(w, names) }); err != nil {
		return st, err
	}
	if err := e.writeFile(fsys, HeaderFile, func(w io.Writer) error { return WriteCHeader(w, names) }); err != nil {
		return st, err
	}
	return st, nil
}

func (e *Exporter) writeFile(fsys fsutil.FileSystem, name string, fn func(io.Writer) error) error {
	path := filepath.Join(e.OutDir, name)
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
