package analytics

import "time"

// DailySeries buckets event timestamps into one point per UTC calendar
// day, covering exactly days consecutive days ending today (inclusive),
// ordered ascending. Days without events appear with count 0.
func DailySeries(days int, now time.Time, events []time.Time) []SeriesPoint {
	if days <= 0 {
		return []SeriesPoint{}
	}

	today := dateOnly(now)
	points := make([]SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		count := 0
		for _, ev := range events {
			if dateOnly(ev).Equal(day) {
				count++
			}
		}
		points = append(points, SeriesPoint{Date: day, Count: count})
	}
	return points
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
