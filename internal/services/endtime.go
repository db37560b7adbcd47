package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CombineEndTime builds one absolute timestamp from a dd.mm.yyyy date
// and an HH:MM time of day. When any component is not a number or the
// combination is not a real calendar instant, it returns the current
// timestamp and ErrMalformedTimestamp; callers treat that as a
// degraded value, not a failure.
func CombineEndTime(lotDate, lotTime string, now time.Time) (time.Time, error) {
	dateParts := strings.Split(lotDate, ".")
	timeParts := strings.Split(lotTime, ":")
	if len(dateParts) != 3 || len(timeParts) != 2 {
		return now, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, lotDate, lotTime)
	}

	nums := make([]int, 0, 5)
	for _, part := range append(dateParts, timeParts...) {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return now, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, lotDate, lotTime)
		}
		nums = append(nums, n)
	}
	day, month, year, hour, minute := nums[0], nums[1], nums[2], nums[3], nums[4]

	combined := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	// time.Date normalizes overflowing components (day 32 rolls into
	// the next month); a changed round trip means the input was not a
	// real instant.
	if combined.Year() != year || combined.Month() != time.Month(month) || combined.Day() != day ||
		combined.Hour() != hour || combined.Minute() != minute {
		return now, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, lotDate, lotTime)
	}
	return combined, nil
}
