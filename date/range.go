package date

import "iter"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the calendar period containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Grid returns the first day of every period that starts within the range.
//
// For a Weekly period starting on a Monday, the grid is every Monday until To.
func (r Range) Grid(period Period) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From.StartOf(period); !d.After(r.To); d = d.EndOf(period).Add(1) {
			if d.Before(r.From) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}
