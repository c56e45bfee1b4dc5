package period

import (
	"fmt"
	"time"

	"github.com/Veraticus/fleet-ledger/internal/common"
)

// DateRange is an inclusive range of civil dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewRange validates and builds a range.
func NewRange(from, to time.Time) (DateRange, error) {
	if !ValidDate(from) || !ValidDate(to) {
		return DateRange{}, fmt.Errorf("%w: missing boundary", common.ErrInvalidRange)
	}
	from, to = Civil(from, nil), Civil(to, nil)
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("%w: %s is after %s", common.ErrInvalidRange,
			from.Format(DateLayout), to.Format(DateLayout))
	}
	return DateRange{From: from, To: to}, nil
}

// ParseRange parses two YYYY-MM-DD strings into a range.
func ParseRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: from: %v", common.ErrInvalidRange, err)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: to: %v", common.ErrInvalidRange, err)
	}
	return NewRange(f, t)
}

// MustRange is ParseRange for fixed literals; it panics on error.
func MustRange(from, to string) DateRange {
	r, err := ParseRange(from, to)
	if err != nil {
		panic(err)
	}
	return r
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Days returns the inclusive number of calendar days in the range.
func (r DateRange) Days() int {
	return DaysBetween(r.From, r.To) + 1
}

// Contains reports whether civil date d lies in the range, boundaries included.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// String formats the range as from..to.
func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (r DateRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// CalculatePreviousPeriod returns the window of identical length that ends the
// day before r starts.
func CalculatePreviousPeriod(r DateRange) DateRange {
	days := r.Days()
	to := AddDays(r.From, -1)
	return DateRange{
		From: AddDays(to, -(days - 1)),
		To:   to,
	}
}
