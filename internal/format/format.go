// Package format renders byte counts and durations for status output.
package format

import "fmt"

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// Size renders a byte count in the largest binary unit that keeps the value
// below 1024, with one decimal place. Zero renders as "0B".
func Size(bytes int64) string {
	return size(float64(bytes))
}

func size(n float64) string {
	if n == 0 {
		return "0B"
	}
	for _, unit := range sizeUnits {
		n /= 1024
		if n < 1024 {
			return fmt.Sprintf("%.1f%s", n, unit)
		}
	}
	return "N/A"
}

// Seconds renders a whole number of seconds as "M min S sec", dropping the
// seconds part when it is zero and the minutes part below one minute.
func Seconds(total int64) string {
	if total < 60 {
		return fmt.Sprintf("%d sec", total)
	}
	s := fmt.Sprintf("%d min", total/60)
	if rem := total % 60; rem > 0 {
		s = fmt.Sprintf("%s %d sec", s, rem)
	}
	return s
}
