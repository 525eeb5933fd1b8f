package model

// TimeConfig is the family's logical-day configuration. DayStartTime is an
// HH:MM string; times before it belong to the previous logical day.
type TimeConfig struct {
	DayStartTime    string `json:"day_start_time"`
	Use24HourFormat bool   `json:"use_24_hour_format"`
	Timezone        string `json:"timezone"`
}

// DefaultDayStartTime is used when the stored value is missing or invalid.
const DefaultDayStartTime = "04:00"
