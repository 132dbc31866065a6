package scheduler

import (
	"time"
)

// Trigger decides when a job fires next. Next must return a time after now.
type Trigger interface {
	Next(now time.Time) time.Time
	String() string
}

// Interval fires at a fixed period measured from the previous firing
type Interval time.Duration

func (i Interval) Next(now time.Time) time.Time {
	return now.Add(time.Duration(i))
}

func (i Interval) String() string {
	return "every " + time.Duration(i).String()
}

// Daily fires at each local midnight
type Daily struct {
	Location *time.Location
}

func (d Daily) Next(now time.Time) time.Time {
	local := now.In(d.Location)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, d.Location)
}

func (d Daily) String() string {
	return "daily at 00:00 " + d.Location.String()
}

// EveryHours fires on the hour at each local hour divisible by Hours,
// the equivalent of the cron expression "0 */Hours * * *".
type EveryHours struct {
	Hours    int
	Location *time.Location
}

func (e EveryHours) Next(now time.Time) time.Time {
	step := e.Hours
	if step <= 0 || step > 24 {
		step = 1
	}

	local := now.In(e.Location)
	// Two days of candidates covers every step and any DST shift
	for h := 1; h <= 48; h++ {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), local.Hour()+h, 0, 0, 0, e.Location)
		if candidate.After(now) && candidate.Hour()%step == 0 {
			return candidate
		}
	}
	return local.Add(time.Duration(step) * time.Hour)
}

func (e EveryHours) String() string {
	return "every " + (time.Duration(e.Hours) * time.Hour).String() + " on the hour " + e.Location.String()
}
