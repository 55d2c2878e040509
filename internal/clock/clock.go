package clock

import (
	"fmt"
	"time"
)

// Unix timestamp of 2000-01-01T00:00:00Z. Hosts without a battery-backed RTC
// boot with the clock near the epoch; anything before this threshold means the
// clock has never been set from an authoritative source.
const syncEpoch = 946684800

// Clock carries wall-clock state and the display location's UTC offset.
// It is created once per process and passed explicitly into every component
// that converts timestamps; the offset is written only by SetClock.
type Clock struct {
	offsetSeconds int
	loc           *time.Location
	posix         string

	// Authoritative base recorded by SetClock. When the host clock is still
	// pre-epoch, Now is derived from this base plus elapsed time instead.
	base      time.Time
	baseSetAt time.Time

	now func() time.Time
}

// New returns a Clock with a UTC offset of zero and an unsynchronized state.
func New() *Clock {
	return &Clock{
		loc: time.UTC,
		now: time.Now,
	}
}

// SetClock records an authoritative UTC timestamp and timezone offset
// (seconds east of UTC, as reported by the forecast API) and derives the
// fixed local zone plus a POSIX-style offset string used by all subsequent
// local-time conversions.
func (c *Clock) SetClock(utcUnix int64, tzOffsetSeconds int) {
	c.offsetSeconds = tzOffsetSeconds
	c.posix = posixTZ(tzOffsetSeconds)
	c.loc = time.FixedZone(zoneName(tzOffsetSeconds), tzOffsetSeconds)
	c.base = time.Unix(utcUnix, 0).UTC()
	c.baseSetAt = c.now()
}

// Now returns the current time. If the host clock has never been set but
// SetClock has run, the authoritative base plus elapsed time is used so that
// wake scheduling still works on RTC-less boards.
func (c *Clock) Now() time.Time {
	n := c.now()
	if n.Unix() >= syncEpoch || c.base.IsZero() {
		return n
	}
	return c.base.Add(n.Sub(c.baseSetAt))
}

// Synced reports whether the wall clock has ever been synchronized. A current
// reading before 2000-01-01 means it has not.
func (c *Clock) Synced() bool {
	return c.Now().Unix() >= syncEpoch
}

// OffsetSeconds returns the stored timezone offset in seconds east of UTC.
func (c *Clock) OffsetSeconds() int {
	return c.offsetSeconds
}

// Location returns the fixed local zone derived from the stored offset.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// PosixTZ returns the POSIX-style offset string derived by SetClock,
// e.g. "UTC-1" for an offset of +3600.
func (c *Clock) PosixTZ() string {
	return c.posix
}

// Fields holds a UTC timestamp decomposed into local calendar fields.
type Fields struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	YearDay int
	Weekday time.Weekday
}

// LocalFields decomposes a UTC unix timestamp into local calendar fields
// using the stored offset.
func (c *Clock) LocalFields(ts int64) Fields {
	t := time.Unix(ts, 0).In(c.loc)
	return Fields{
		Year:    t.Year(),
		Month:   t.Month(),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		YearDay: t.YearDay(),
		Weekday: t.Weekday(),
	}
}

// Local converts a UTC unix timestamp to a time.Time in the stored zone.
func (c *Clock) Local(ts int64) time.Time {
	return time.Unix(ts, 0).In(c.loc)
}

// FormatTimeOfDay renders a timestamp as local time of day: "6:44" in
// 24-hour mode, "6:44AM" in 12-hour mode. Hours carry no leading zero.
func (c *Clock) FormatTimeOfDay(ts int64, imperial bool) string {
	t := c.Local(ts)
	if !imperial {
		return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
	}
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := 'A'
	if t.Hour() >= 12 {
		ampm = 'P'
	}
	return fmt.Sprintf("%d:%02d%cM", hour12, t.Minute(), ampm)
}

// FormatHour renders the hour of a timestamp for axis labels: "07" in
// 24-hour mode, "7AM" in 12-hour mode.
func (c *Clock) FormatHour(ts int64, imperial bool) string {
	t := c.Local(ts)
	if !imperial {
		return fmt.Sprintf("%02d", t.Hour())
	}
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := 'A'
	if t.Hour() >= 12 {
		ampm = 'P'
	}
	return fmt.Sprintf("%d%cM", hour12, ampm)
}

// posixTZ builds a POSIX TZ offset string. The POSIX sign convention is
// inverted: zones east of UTC carry a negative offset.
func posixTZ(offsetSeconds int) string {
	sec := -offsetSeconds
	sign := "+"
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}

// zoneName builds the conventional display name for a fixed offset.
func zoneName(offsetSeconds int) string {
	if offsetSeconds == 0 {
		return "UTC"
	}
	sec := offsetSeconds
	sign := "+"
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}
