package workflow

import (
	"fmt"
	"time"
)

// Month is one calendar month of ERA5 data.
type Month struct {
	Year  int
	Month time.Month
}

// String renders the month the way filenames embed it, e.g. "201802".
func (m Month) String() string {
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}

func (m Month) next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) after(o Month) bool {
	if m.Year != o.Year {
		return m.Year > o.Year
	}
	return m.Month > o.Month
}

// MonthRange lists every month from start to end, inclusive. An end before
// the start yields an empty list.
func MonthRange(startYear int, startMonth time.Month, endYear int, endMonth time.Month) []Month {
	end := Month{Year: endYear, Month: endMonth}
	var months []Month
	for m := (Month{Year: startYear, Month: startMonth}); !m.after(end); m = m.next() {
		months = append(months, m)
	}
	return months
}
