package render

// Section labels. Localization is limited to these tables; the forecast API
// language setting only affects upstream condition descriptions.
const (
	txtFeelsLike = "Feels Like"
	txtSunrise   = "Sunrise"
	txtSunset    = "Sunset"
	txtHumidity  = "Humidity"
	txtPressure  = "Pressure"
	txtWind      = "Wind"
)

// Abbreviated day and month names for the date line and forecast strip,
// indexed by time.Weekday and time.Month-1 respectively.
var (
	weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthNames   = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)
