package timewindow

import (
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// Timeline positions are percentages kept away from the edges.
const (
	FirstPosition = 1.0
	LastPosition  = 98.0
)

const (
	hourBucketLimit = Day
	dayBucketLimit  = 14 * Day
)

// TickLabelLayout formats bucket boundaries.
const TickLabelLayout = "01/02, 15:04"

// TimelineScale maps timestamps onto a horizontal axis split into buckets.
type TimelineScale struct {
	start     time.Time
	end       time.Time
	bucket    time.Duration
	bounds    []int64
	positions []float64
}

// NewTimelineScale builds the scale for the window of the given duration ending at now.
// Buckets are 2 hours wide up to one day, 1 day wide up to 14 days and 1 week beyond.
func NewTimelineScale(duration time.Duration, now time.Time) *TimelineScale {
	s := &TimelineScale{
		start:  now.Add(-duration),
		end:    now,
		bucket: BucketWidth(duration),
	}

	for t := s.start; t.Before(s.end); t = t.Add(s.bucket) {
		s.bounds = append(s.bounds, t.UnixMilli())
	}
	s.bounds = append(s.bounds, s.end.UnixMilli())

	n := len(s.bounds)
	s.positions = make([]float64, n)
	for i := range s.bounds {
		switch {
		case i == n-1:
			s.positions[i] = LastPosition
		case i == 0:
			s.positions[i] = FirstPosition
		default:
			s.positions[i] = float64(i) / float64(n-1) * 100
		}
	}
	return s
}

// BucketWidth returns the bucket width used for a window of the given duration.
func BucketWidth(duration time.Duration) time.Duration {
	switch {
	case duration <= hourBucketLimit:
		return 2 * time.Hour
	case duration <= dayBucketLimit:
		return Day
	default:
		return Week
	}
}

// Bucket returns the bucket width of the scale.
func (s *TimelineScale) Bucket() time.Duration { return s.bucket }

// Ticks returns the labelled bucket boundaries. Labels drop minutes except for the final boundary.
func (s *TimelineScale) Ticks() []entity.TimelineTick {
	ticks := make([]entity.TimelineTick, len(s.bounds))
	for i, ms := range s.bounds {
		t := time.UnixMilli(ms).In(s.start.Location())
		if i < len(s.bounds)-1 {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		}
		ticks[i] = entity.TimelineTick{
			Timestamp: ms,
			Label:     t.Format(TickLabelLayout),
			Position:  s.positions[i],
		}
	}
	return ticks
}

// Position returns the axis position of ts in [FirstPosition, LastPosition].
// Timestamps before the window clamp to the first position and timestamps at
// or after its end clamp to the last. Inside a bucket the position is
// interpolated linearly between the bucket's boundaries.
func (s *TimelineScale) Position(ts int64) float64 {
	n := len(s.bounds)
	if ts < s.bounds[0] {
		return FirstPosition
	}
	if ts >= s.bounds[n-1] {
		return LastPosition
	}

	// bounds is strictly increasing, find the bucket [bounds[i], bounds[i+1]) holding ts.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.bounds[mid] <= ts {
			lo = mid
		} else {
			hi = mid
		}
	}

	width := float64(s.bounds[lo+1] - s.bounds[lo])
	ratio := float64(ts-s.bounds[lo]) / width
	return s.positions[lo] + ratio*(s.positions[lo+1]-s.positions[lo])
}

// Place maps each timestamp to a timeline point, preserving order.
func (s *TimelineScale) Place(timestamps []int64) []entity.TimelinePoint {
	points := make([]entity.TimelinePoint, 0, len(timestamps))
	for _, ts := range timestamps {
		points = append(points, entity.TimelinePoint{Timestamp: ts, Position: s.Position(ts)})
	}
	return points
}
