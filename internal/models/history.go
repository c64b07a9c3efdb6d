package models

import "time"

// PricePoint is one daily snapshot of total portfolio value against total
// cost basis. History is append-only; the day key prevents duplicates.
type PricePoint struct {
	Day        string    `json:"day" badgerhold:"key"` // YYYY-MM-DD
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
	TotalCost  float64   `json:"total_cost"`
}

// Settings holds the user-adjustable dashboard preferences. Display
// preferences are nested under display_options, matching the Settings sheet
// payload.
type Settings struct {
	Currency           string         `json:"currency"`
	RefreshIntervalMin int            `json:"refresh_interval"`
	DisplayOptions     DisplayOptions `json:"display_options"`
}

// DisplayOptions groups the presentation-only preferences.
type DisplayOptions struct {
	ShowChart   bool   `json:"show_chart"`
	DefaultView string `json:"default_view"`
	Theme       string `json:"theme"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Currency:           "USD",
		RefreshIntervalMin: 5,
		DisplayOptions: DisplayOptions{
			ShowChart:   true,
			DefaultView: "dashboard",
			Theme:       "system",
		},
	}
}
