package constants

// REST endpoint templates, relative to the configured API base URL.
// Templates containing %d take a habit id.
const (
	HabitsEndpoint = "/habits"
	HabitEndpoint  = "/habits/%d"

	CheckinsEndpoint     = "/habits/%d/checkins"
	CheckinsBatchUpdate  = "/checkins/batch"
	AnalyticsSummaryPath = "/analytics/summary"
	AnalyticsHeatmapPath = "/analytics/heatmap"
	DailyQuotePath       = "/quotes/daily"
)
