package cerrors

// Channel accumulates Reports for a whole compilation, as specified in
// spec.md §5-§7: errors never disappear across declarations, and a
// catastrophic count halts the entire checker. Grounded on the teacher's
// error-accumulation loop in internal/types/typechecker_core.go's
// formatErrors, generalized from "collect then format once" to a live
// accumulator the checker can poll mid-declaration.
type Channel struct {
	reports []*Report
}

// NewChannel returns an empty error channel.
func NewChannel() *Channel {
	return &Channel{}
}

// Append records a report. Never silently drops anything.
func (c *Channel) Append(r *Report) {
	c.reports = append(c.reports, r)
}

// Reports returns all accumulated reports in emission order.
func (c *Channel) Reports() []*Report {
	return c.reports
}

// Count returns the number of accumulated reports.
func (c *Channel) Count() int {
	return len(c.reports)
}

// Catastrophic reports whether the accumulated error count has crossed the
// failure budget (spec.md §5/§6), at which point the outer driver must halt
// the whole compilation rather than proceed to the next declaration.
func (c *Channel) Catastrophic() bool {
	return len(c.reports) > CatastrophicThreshold
}
