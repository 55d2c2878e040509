package power

// InWakeWindow reports whether the display refreshes at the given local hour.
// A sleep hour of 24 means the display never goes dormant. A wake hour greater
// than the sleep hour describes a window spanning midnight, such as 22 to 6.
func InWakeWindow(wakeHour, sleepHour, hour int) bool {
	if sleepHour == 24 {
		return true
	}
	if wakeHour > sleepHour {
		return hour >= wakeHour || hour <= sleepHour
	}
	return hour >= wakeHour && hour <= sleepHour
}

// SleepSeconds returns how long to sleep so the next wake lands on the
// upcoming refresh boundary. refreshMinutes is the interval, minute and
// second the current local time. driftSeconds is a fixed margin added so the
// device wakes just past the boundary rather than just before it when the
// sleep timer runs fast.
func SleepSeconds(refreshMinutes, minute, second, driftSeconds int) int {
	if refreshMinutes < 1 {
		refreshMinutes = 1
	}
	return (refreshMinutes-minute%refreshMinutes)*60 - second + driftSeconds
}
