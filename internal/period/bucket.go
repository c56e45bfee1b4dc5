package period

import (
	"fmt"
	"time"
)

// Granularity is the width of a time-series bucket.
type Granularity string

// Granularity constants.
const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Bucket is one fixed-width interval of a series.
type Bucket struct {
	Key         time.Time   `json:"key"`
	Granularity Granularity `json:"granularity"`
	Label       string      `json:"label"`
}

// ChooseGranularity picks the bucket width for a range: up to 31 days by day,
// up to 180 days by week, longer by month.
func ChooseGranularity(from, to time.Time) Granularity {
	days := DateRange{From: from, To: to}.Days()
	switch {
	case days <= 31:
		return GranularityDay
	case days <= 180:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// BucketKey returns the start of the bucket containing civil date d: the day
// itself, the Monday on or before it, or the first of its month.
func BucketKey(d time.Time, g Granularity) time.Time {
	d = Day(d.Year(), d.Month(), d.Day())
	switch g {
	case GranularityWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return AddDays(d, -offset)
	case GranularityMonth:
		return Day(d.Year(), d.Month(), 1)
	default:
		return d
	}
}

// BucketLabel renders a short display label for a bucket key.
func BucketLabel(key time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		return "Week of " + key.Format("02/01")
	case GranularityMonth:
		return key.Format("Jan/06")
	default:
		return key.Format("02/01")
	}
}

// NextBucket returns the key of the bucket after key.
func NextBucket(key time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return AddDays(key, 7)
	case GranularityMonth:
		return key.AddDate(0, 1, 0)
	default:
		return AddDays(key, 1)
	}
}

// GenerateBuckets enumerates every bucket from the one containing from through
// the one containing to, including buckets with no activity.
func GenerateBuckets(from, to time.Time, g Granularity) []Bucket {
	first := BucketKey(from, g)
	last := BucketKey(to, g)
	if last.Before(first) {
		return nil
	}

	var buckets []Bucket
	for key := first; !key.After(last); key = NextBucket(key, g) {
		buckets = append(buckets, Bucket{
			Key:         key,
			Granularity: g,
			Label:       BucketLabel(key, g),
		})
	}
	return buckets
}

// End returns the last civil date covered by the bucket.
func (b Bucket) End() time.Time {
	return AddDays(NextBucket(b.Key, b.Granularity), -1)
}
