package rankings

// Diagnostics collects the non-fatal conditions of one run for the reporting
// collaborator.
type Diagnostics struct {
	Excluded       []*DataInsufficientError
	NonConvergence *NonConvergenceWarning
	Degenerate     []*DegenerateDistributionCase
}

// Warnings flattens the diagnostics into a single error list
func (d Diagnostics) Warnings() []error {
	var out []error
	for _, e := range d.Excluded {
		out = append(out, e)
	}
	if d.NonConvergence != nil {
		out = append(out, d.NonConvergence)
	}
	for _, e := range d.Degenerate {
		out = append(out, e)
	}
	return out
}

// Empty reports whether the run raised no conditions
func (d Diagnostics) Empty() bool {
	return len(d.Excluded) == 0 && d.NonConvergence == nil && len(d.Degenerate) == 0
}

// ExcludedTeamIDs returns the ids of teams dropped from the output
func (d Diagnostics) ExcludedTeamIDs() []string {
	ids := make([]string, 0, len(d.Excluded))
	for _, e := range d.Excluded {
		ids = append(ids, e.TeamID)
	}
	return ids
}

// FlatMetrics returns the names of metrics normalized to 0.5
func (d Diagnostics) FlatMetrics() []string {
	names := make([]string, 0, len(d.Degenerate))
	for _, e := range d.Degenerate {
		names = append(names, e.Metric)
	}
	return names
}
