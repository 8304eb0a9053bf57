package period

import "time"

// WeeksInYear returns the number of ISO weeks (52 or 53) in the ISO year.
// December 28 always falls in the final ISO week of its year.
func WeeksInYear(year int) int {
	_, week := Date(year, time.December, 28).ISOWeek()
	return week
}

// WeekStart returns the Monday that begins the given ISO week.
func WeekStart(week, year int) time.Time {
	jan4 := Date(year, time.January, 4)
	return mondayOf(jan4).AddDate(0, 0, 7*(week-1))
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) ISOWeek {
	year, week := Day(t).ISOWeek()
	return ISOWeek{Week: week, Year: year}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) CalendarMonth {
	return CalendarMonth{Month: t.Month(), Year: t.Year()}
}

// QuarterOf returns the calendar quarter containing t.
func QuarterOf(t time.Time) CalendarQuarter {
	return CalendarQuarter{Quarter: (int(t.Month())-1)/3 + 1, Year: t.Year()}
}

// YearOf returns the calendar year containing t.
func YearOf(t time.Time) CalendarYear {
	return CalendarYear{Year: t.Year()}
}

func mondayOf(t time.Time) time.Time {
	d := Day(t)
	sinceMonday := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -sinceMonday)
}
