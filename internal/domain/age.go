package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AgeGroup is a coarse, derived age bucket of an animal. It is never stored.
type AgeGroup string

const (
	AgeBaby   AgeGroup = "BABY"   // < 6 months
	AgeYoung  AgeGroup = "YOUNG"  // 6 to 24 months
	AgeAdult  AgeGroup = "ADULT"  // 24 to 84 months
	AgeSenior AgeGroup = "SENIOR" // >= 84 months
)

// Month thresholds between adjacent age groups.
const (
	babyMonths  = 6
	youngMonths = 24
	adultMonths = 84
)

// ErrBirthDateInFuture is returned by Classify when birth lies after now.
var ErrBirthDateInFuture = errors.New("birth date is in the future")

// Valid reports whether g is one of the known groups.
func (g AgeGroup) Valid() bool {
	switch g {
	case AgeBaby, AgeYoung, AgeAdult, AgeSenior:
		return true
	}
	return false
}

// ParseAgeGroup parses a case-insensitive age group name.
func ParseAgeGroup(s string) (AgeGroup, bool) {
	g := AgeGroup(strings.ToUpper(strings.TrimSpace(s)))
	return g, g.Valid()
}

// Age is the derived age of an animal on a given day.
type Age struct {
	Group       AgeGroup
	Description string
	// TotalMonths counts complete months between birth and today.
	TotalMonths int
	Years       int
	Months      int
	Days        int
}

// Date truncates t to midnight UTC of its calendar date in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to the date of t. When the target month is
// shorter than the source day, the result is clamped to the last day of that
// month (Mar 31 minus one month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	t = Date(t)
	y, m, d := t.Date()
	total := int(m) - 1 + n
	ty := y + floorDiv(total, 12)
	tm := time.Month(floorMod(total, 12) + 1)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of complete months from start to end.
// A month is complete only once end's day of month has reached start's.
func MonthsBetween(start, end time.Time) int {
	start, end = Date(start), Date(end)
	months := prolepticMonth(end) - prolepticMonth(start)
	if months > 0 && end.Day() < start.Day() {
		months--
	} else if months < 0 && end.Day() > start.Day() {
		months++
	}
	return months
}

// DaysBetween returns the number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / 24)
}

// PeriodBetween splits the distance from start to end (start <= end) into
// years, months and days the way a calendar reader would: complete months
// first, then the remaining days counted from start plus those months.
func PeriodBetween(start, end time.Time) (years, months, days int) {
	start, end = Date(start), Date(end)
	total := prolepticMonth(end) - prolepticMonth(start)
	days = end.Day() - start.Day()
	if total > 0 && days < 0 {
		total--
		days = DaysBetween(AddMonths(start, total), end)
	}
	return total / 12, total % 12, days
}

// GroupForMonths maps a count of complete months to its age group.
func GroupForMonths(months int) AgeGroup {
	switch {
	case months < babyMonths:
		return AgeBaby
	case months < youngMonths:
		return AgeYoung
	case months < adultMonths:
		return AgeAdult
	default:
		return AgeSenior
	}
}

// Classify derives the age group and human description of an animal born on
// birth, as seen on the calendar day of now. It is pure and fails only when
// birth is after now.
func Classify(birth, now time.Time) (Age, error) {
	birth, today := Date(birth), Date(now)
	if birth.After(today) {
		return Age{}, fmt.Errorf("%w: %s", ErrBirthDateInFuture, birth.Format(time.DateOnly))
	}
	total := MonthsBetween(birth, today)
	y, m, d := PeriodBetween(birth, today)
	age := Age{
		Group:       GroupForMonths(total),
		TotalMonths: total,
		Years:       y,
		Months:      m,
		Days:        d,
	}
	switch {
	case y > 0:
		age.Description = plural(y, "year")
	case m > 0:
		age.Description = plural(m, "month")
	default:
		age.Description = describeDays(DaysBetween(birth, today))
	}
	return age, nil
}

// describeDays renders ages shorter than one calendar month.
// Anything of 30 days or more falls back to a day count.
func describeDays(days int) string {
	switch {
	case days <= 0:
		return "Less than a day old"
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	default:
		return plural(days, "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// BirthRange is the birth-date window that corresponds to an age group on a
// given day. From is always inclusive; To is inclusive only when ToInclusive.
type BirthRange struct {
	From        time.Time
	To          time.Time
	ToInclusive bool
}

// SeniorFloor is the earliest birth date considered by age-group searches.
var SeniorFloor = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// BirthRangeFor returns the birth-date window matching g on the day of now:
//
//	BABY   [now-6mo,  now+1d]
//	YOUNG  [now-24mo, now-6mo)
//	ADULT  [now-84mo, now-24mo)
//	SENIOR [1900-01-01, now-84mo)
func BirthRangeFor(g AgeGroup, now time.Time) (BirthRange, bool) {
	today := Date(now)
	switch g {
	case AgeBaby:
		return BirthRange{From: AddMonths(today, -babyMonths), To: today.AddDate(0, 0, 1), ToInclusive: true}, true
	case AgeYoung:
		return BirthRange{From: AddMonths(today, -youngMonths), To: AddMonths(today, -babyMonths)}, true
	case AgeAdult:
		return BirthRange{From: AddMonths(today, -adultMonths), To: AddMonths(today, -youngMonths)}, true
	case AgeSenior:
		return BirthRange{From: SeniorFloor, To: AddMonths(today, -adultMonths)}, true
	}
	return BirthRange{}, false
}

func prolepticMonth(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
