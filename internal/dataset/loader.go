package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/fsutil"
	"github.com/banshee-data/sleep.report/internal/monitoring"
	"github.com/banshee-data/sleep.report/internal/security"
)

// ErrMalformed is returned for participant files that cannot be parsed.
var ErrMalformed = errors.New("malformed participant file")

const (
	participantSuffix = "_whole_df.csv"
	infoFile          = "participant_info.csv"
)

// DefaultColumns are the columns the extractor consumes.
var DefaultColumns = []string{
	features.ChannelAccX, features.ChannelAccY, features.ChannelAccZ,
	features.ChannelBVP, features.ChannelHR, features.LabelColumn,
}

// Loader reads participant tables from one resolution directory.
type Loader struct {
	fs         fsutil.FileSystem
	root       string
	resolution Resolution
}

// NewLoader returns a loader for root/data_<resolution>. The directory must
// exist.
func NewLoader(fsys fsutil.FileSystem, root string, resolution string) (*Loader, error) {
	res, err := ParseResolution(resolution)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	l := &Loader{fs: fsys, root: root, resolution: res}
	if !fsys.Exists(l.Dir()) {
		return nil, fmt.Errorf("data directory not found: %s", l.Dir())
	}
	return l, nil
}

// Resolution returns the loader's resolution.
func (l *Loader) Resolution() Resolution { return l.resolution }

// Dir returns the directory holding participant files.
func (l *Loader) Dir() string { return filepath.Join(l.root, l.resolution.Dir()) }

// Participants lists participant IDs in sorted order. participant_info.csv is
// skipped.
func (l *Loader) Participants() ([]string, error) {
	matches, err := l.fs.Glob(filepath.Join(l.Dir(), "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		if base == infoFile {
			continue
		}
		ids = append(ids, participantID(base))
	}
	return ids, nil
}

func participantID(base string) string {
	if strings.HasSuffix(base, participantSuffix) {
		return strings.TrimSuffix(base, participantSuffix)
	}
	return strings.TrimSuffix(base, ".csv")
}

// Path returns the file for participant id.
func (l *Loader) Path(id string) (string, error) {
	dir := l.Dir()
	for _, name := range []string{id + participantSuffix, id + ".csv"} {
		p := filepath.Join(dir, name)
		if l.fs.Exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("participant %s: no file in %s", id, dir)
}

// Load reads one participant into a table at the loader's rate. Only the
// requested columns are kept (DefaultColumns when none are given); requested
// columns absent from the file are skipped so the extractor can report the
// missing modality. Empty numeric cells load as NaN.
func (l *Loader) Load(id string, columns ...string) (*features.Table, error) {
	path, err := l.Path(id)
	if err != nil {
		return nil, err
	}
	if _, isOS := l.fs.(fsutil.OSFileSystem); isOS {
		if err := security.ValidatePathWithinDirectory(path, l.Dir()); err != nil {
			return nil, err
		}
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if len(columns) == 0 {
		columns = DefaultColumns
	}
	tbl, err := ReadTable(f, l.resolution.Rate(), columns)
	if err != nil {
		return nil, fmt.Errorf("participant %s: %w", id, err)
	}
	monitoring.Logf("dataset: loaded %s (%d rows, channels %v)", id, tbl.Rows(), tbl.Channels())
	return tbl, nil
}

// ReadTable parses CSV with a header row into a table sampled at rate.
// LabelColumn is read as text; every other requested column must hold
// numbers or empty cells.
func ReadTable(r io.Reader, rate float64, columns []string) (*features.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	type column struct {
		name string
		pos  int
	}
	var numeric []column
	labelPos := -1
	for _, c := range columns {
		pos, ok := index[c]
		if !ok {
			continue
		}
		if c == features.LabelColumn {
			labelPos = pos
			continue
		}
		numeric = append(numeric, column{name: c, pos: pos})
	}

	values := make([][]float64, len(numeric))
	var labels []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		for i, c := range numeric {
			v, err := parseCell(rec[c.pos])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformed, line, c.name, err)
			}
			values[i] = append(values[i], v)
		}
		if labelPos >= 0 {
			labels = append(labels, strings.TrimSpace(rec[labelPos]))
		}
	}

	tbl, err := features.NewTable(rate)
	if err != nil {
		return nil, err
	}
	for i, c := range numeric {
		if err := tbl.AddChannel(c.name, values[i]); err != nil {
			return nil, err
		}
	}
	if labelPos >= 0 {
		if labels == nil {
			labels = []string{}
		}
		if err := tbl.SetLabels(labels); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
