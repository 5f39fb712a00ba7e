package models

// HeatmapPayload maps habit id to per-date status for a date range
type HeatmapPayload struct {
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Habits    map[int]map[string]Status `json:"habits"`
}

// AnalyticsSummary is the server-side aggregate for a date range
type AnalyticsSummary struct {
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	Period            string  `json:"period"`
	TotalHabits       int     `json:"total_habits"`
	ActiveHabits      int     `json:"active_habits"`
	CompletedToday    int     `json:"completed_today"`
	TotalCheckins     int     `json:"total_checkins"`
	CompletedCheckins int     `json:"completed_checkins"`
	CompletionRate    float64 `json:"completion_rate"`
	BestStreak        int     `json:"best_streak"`
}

// Quote is the daily motivational quote
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}
