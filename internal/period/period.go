// Package period maps calendar dates to the identifiers that group audit
// records: ISO-8601 week ids ("2025-W09") and month ids ("2025-02"). Every
// component that buckets records by time goes through these functions so the
// grouping cannot drift between writers and readers.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DayNames indexes Sunday..Saturday, matching the matrix column order.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ParseDate parses an ISO calendar day (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders a date as an ISO calendar day string.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// WeekOf returns the ISO-8601 week id ("YYYY-Www") of the given date. The date
// is advanced to the Thursday of its week (Sunday counted as day 7) and the
// week number is derived from that Thursday's offset into its own year, so
// dates near year boundaries land in the correct ISO year.
func WeekOf(date time.Time) string {
	day := int(date.Weekday())
	if day == 0 {
		day = 7
	}
	thursday := date.AddDate(0, 0, 4-day)
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, thursday.Location())
	daysSinceYearStart := int(thursday.Sub(yearStart).Hours() / 24)
	weekNo := (daysSinceYearStart + 7) / 7
	return fmt.Sprintf("%d-W%02d", thursday.Year(), weekNo)
}

// MonthOf returns the month id ("YYYY-MM") of the given date.
func MonthOf(date time.Time) string {
	return date.Format("2006-01")
}

// DatesOfISOWeek returns the seven calendar days of the given ISO week,
// Sunday through Saturday. The Monday of week 1 is reconstructed from
// January 4 (always inside ISO week 1), offset by whole weeks, then stepped
// back one day so the matrix can lead with Sunday.
func DatesOfISOWeek(weekID string) ([7]time.Time, error) {
	var days [7]time.Time

	year, weekNo, err := parseWeekID(weekID)
	if err != nil {
		return days, err
	}

	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	jan4Day := int(jan4.Weekday())
	diffToMonday := jan4Day - 1
	if jan4Day == 0 {
		diffToMonday = 6
	}
	mondayWeek1 := jan4.AddDate(0, 0, -diffToMonday)
	monday := mondayWeek1.AddDate(0, 0, (weekNo-1)*7)
	sunday := monday.AddDate(0, 0, -1)
	for i := range days {
		days[i] = sunday.AddDate(0, 0, i)
	}
	return days, nil
}

// DayIndex returns the Sunday-based weekday index (0..6) used to address
// daily matrix columns.
func DayIndex(date time.Time) int {
	return int(date.Weekday())
}

func parseWeekID(weekID string) (year, week int, err error) {
	yearPart, weekPart, ok := strings.Cut(weekID, "-W")
	if !ok {
		return 0, 0, fmt.Errorf("malformed week id %q", weekID)
	}
	year, err = strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed week id %q: %w", weekID, err)
	}
	week, err = strconv.Atoi(weekPart)
	if err != nil || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("malformed week id %q", weekID)
	}
	return year, week, nil
}
