package domain

// ProgressFunc receives cumulative sync progress as a percentage in [0,100].
// Values never decrease within one pass and reach exactly 100 only when the
// pass finishes without aborting.
type ProgressFunc func(percent int)
