package constants

const (
	// Persisted client-side settings keys
	SettingAPIURL                = "api_url"
	SettingUser                  = "user"
	SettingDarkMode              = "dark_mode"
	SettingShowMotivationalQuote = "show_motivational_quote"
	SettingNotificationsEnabled  = "notifications"
	SettingNetworkErrorPolicy    = "network_error_policy"
	SettingTimezone              = "timezone"
	SettingAnalyticsStartDate    = "analytics_start_date"
	SettingAnalyticsEndDate      = "analytics_end_date"
	SettingAnalyticsPeriod       = "analytics_period"

	// Network error policies
	NetworkErrorsNotify = "notify"
	NetworkErrorsSilent = "silent"

	// Analytics periods
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	// Default Settings Values
	DefaultDarkMode              = false
	DefaultShowMotivationalQuote = true
	DefaultNotificationsEnabled  = true
	DefaultNetworkErrorPolicy    = NetworkErrorsSilent
	DefaultTimezone              = "Local" // Use system local timezone by default
	DefaultAnalyticsPeriod       = PeriodWeek
)
