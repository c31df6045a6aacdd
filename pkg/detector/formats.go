package detector

import (
	"strconv"
	"strings"
)

// DateOrder describes which date component comes first in the headers.
type DateOrder string

const (
	// DateOrderUnknown means no header dates were seen.
	DateOrderUnknown DateOrder = "unknown"

	// DateOrderAmbiguous means every date fits both orderings.
	DateOrderAmbiguous DateOrder = "ambiguous"

	// DateOrderDayFirst means at least one date only fits DD/MM.
	DateOrderDayFirst DateOrder = "day-first"

	// DateOrderMonthFirst means at least one date only fits MM/DD.
	DateOrderMonthFirst DateOrder = "month-first"

	// DateOrderMixed means the export contains dates that only fit DD/MM
	// and others that only fit MM/DD.
	DateOrderMixed DateOrder = "mixed"
)

// dateFields splits a header date into its numeric components.
// The grammar guarantees three numeric parts.
func dateFields(date string) (first, second int, yearDigits int) {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return 0, 0, 0
	}
	first, _ = strconv.Atoi(parts[0])
	second, _ = strconv.Atoi(parts[1])
	return first, second, len(parts[2])
}

// hasMeridiem reports whether a header time carries an AM/PM style marker.
func hasMeridiem(t string) bool {
	if t == "" {
		return false
	}
	c := t[len(t)-1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// resolveOrder combines evidence from the sampled dates.
func resolveOrder(seen, dayFirst, monthFirst bool) DateOrder {
	switch {
	case !seen:
		return DateOrderUnknown
	case dayFirst && monthFirst:
		return DateOrderMixed
	case dayFirst:
		return DateOrderDayFirst
	case monthFirst:
		return DateOrderMonthFirst
	default:
		return DateOrderAmbiguous
	}
}
