package main

// Ratio converts a numerator/denominator pair to a percentage. A zero
// denominator yields 0, not an error: downstream reports substitute
// estimates rather than abort.
func Ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator * 100
}

// NewMetric builds a Metric with its percentage precomputed.
func NewMetric(cohort string, year int, numerator, denominator float64) Metric {
	return Metric{
		Cohort:      cohort,
		Year:        year,
		Numerator:   numerator,
		Denominator: denominator,
		Percentage:  Ratio(numerator, denominator),
	}
}

// YearOverYearDelta returns the absolute change between two yearly values.
func YearOverYearDelta(current, previous float64) float64 {
	return current - previous
}

// YearOverYearPoints returns the change between two metrics in percentage
// points.
func YearOverYearPoints(current, previous Metric) float64 {
	return current.Percentage - previous.Percentage
}

// ProjectTarget applies the configured forward increment additively, on raw
// percentage points or counts. Growth targets here are never multiplicative.
func ProjectTarget(current, increment float64) float64 {
	return current + increment
}
