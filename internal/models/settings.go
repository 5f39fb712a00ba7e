package models

// User is the signed-in account as returned at login
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Settings holds the persisted client-side state
type Settings struct {
	APIURL                string `json:"api_url"`                 // base URL of the HabitVault REST API
	User                  *User  `json:"user,omitempty"`          // signed-in user, nil when logged out
	DarkMode              bool   `json:"dark_mode"`               // dark palette in the TUI
	ShowMotivationalQuote bool   `json:"show_motivational_quote"` // show the daily quote on the dashboard
	NotificationsEnabled  bool   `json:"notifications"`           // whether error notifications are shown
	NetworkErrorPolicy    string `json:"network_error_policy"`    // "notify" or "silent"
	Timezone              string `json:"timezone"`                // IANA timezone name or "Local"
	AnalyticsStartDate    string `json:"analytics_start_date"`    // last used analytics range start
	AnalyticsEndDate      string `json:"analytics_end_date"`      // last used analytics range end
	AnalyticsPeriod       string `json:"analytics_period"`        // week, month or year
}
