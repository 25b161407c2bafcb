package stats

import (
	"cmp"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SortData returns a copy of records ordered by cases, highest first.
// Records with equal cases keep their input order.
func SortData(records []CountryRecord) []CountryRecord {
	return SortBy(records, MetricCases)
}

// SortBy is SortData for an arbitrary metric. Absent counts sort as zero.
func SortBy(records []CountryRecord, metric Metric) []CountryRecord {
	sorted := make([]CountryRecord, len(records))
	copy(sorted, records)

	slices.SortStableFunc(sorted, func(a, b CountryRecord) int {
		return cmp.Compare(b.Total(metric).N, a.Total(metric).N)
	})
	return sorted
}

// PrettyPrintStat formats a change-since-yesterday value: "+1,234" for
// growth, "-12" for corrections, "0" when absent or zero.
func PrettyPrintStat(c Count) string {
	if !c.Valid || c.N == 0 {
		return "0"
	}
	if c.N > 0 {
		return "+" + group(c.N)
	}
	return group(c.N)
}

// PrettyPrintTotal formats a cumulative value with digit grouping.
func PrettyPrintTotal(c Count) string {
	if !c.Valid {
		return "0"
	}
	return group(c.N)
}

// group always uses English grouping so output does not depend on the host locale.
func group(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
