package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/banshee-data/sleep.report/internal/features"
	"github.com/banshee-data/sleep.report/internal/timeutil"
)

// Report summarises a run, surfacing degradation against the target feature
// list.
type Report struct {
	Attempted int
	Succeeded int
	Failed    int
	Epochs    int

	Target    []string
	Available []string
	Missing   []string

	// Absences counts absent feature groups by group and reason over all
	// epochs of successful participants.
	Absences map[string]map[features.Reason]int
	Failures []Failure
	Duration time.Duration
}

func buildReport(target []string, attempted int, results []ParticipantResult, failures []Failure) Report {
	rep := Report{
		Attempted: attempted,
		Succeeded: len(results),
		Failed:    len(failures),
		Target:    target,
		Absences:  make(map[string]map[features.Reason]int),
		Failures:  failures,
	}
	seen := make(map[string]bool, len(target))
	for _, pr := range results {
		rep.Epochs += pr.Result.Len()
		for _, n := range pr.Result.AvailableNames() {
			seen[n] = true
		}
		for group, reasons := range pr.Result.Absences() {
			if rep.Absences[group] == nil {
				rep.Absences[group] = make(map[features.Reason]int)
			}
			for reason, n := range reasons {
				rep.Absences[group][reason] += n
			}
		}
	}
	for _, n := range target {
		if seen[n] {
			rep.Available = append(rep.Available, n)
		} else {
			rep.Missing = append(rep.Missing, n)
		}
	}
	return rep
}

// Write prints a human-readable summary.
func (r Report) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Participants: %d attempted, %d succeeded, %d failed\n", r.Attempted, r.Succeeded, r.Failed)
	fmt.Fprintf(&b, "Total epochs: %d\n", r.Epochs)
	fmt.Fprintf(&b, "Using %d features out of %d target features\n", len(r.Available), len(r.Target))
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "Warning: %d features not found in data:\n", len(r.Missing))
		for i, n := range r.Missing {
			if i == 10 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(r.Missing)-10)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", n)
		}
	}
	groups := make([]string, 0, len(r.Absences))
	for g := range r.Absences {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		reasons := make([]string, 0, len(r.Absences[g]))
		for reason, n := range r.Absences[g] {
			reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
		}
		sort.Strings(reasons)
		fmt.Fprintf(&b, "Absent %s: %s\n", g, strings.Join(reasons, ", "))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "Failed %s\n", f.Error())
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", timeutil.FormatDuration(r.Duration))
	_, err := io.WriteString(w, b.String())
	return err
}
