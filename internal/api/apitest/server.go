// Package apitest runs an in-memory HabitVault API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
	"github.com/julianstephens/habitvault/internal/schedule"
	"github.com/julianstephens/habitvault/internal/utils"
)

// Token is the bearer token the server accepts unless Server.Token is changed
const Token = "test-token"

type checkinKey struct {
	habitID int
	date    string
}

// FailFunc decides whether a request should be rejected. A non-zero status
// short-circuits the handler with that status.
type FailFunc func(r *http.Request) int

// Server is a fake HabitVault API mounted under /api
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	clock    utils.Clock
	habits   map[int]*models.Habit
	checkins map[checkinKey]*models.Checkin
	nextID   int
	calls    map[string]int
	fail     FailFunc
	quote    models.Quote
}

// New starts a server whose clock is pinned to today (YYYY-MM-DD)
func New(t testing.TB, today string) *Server {
	t.Helper()
	now, err := time.Parse(constants.DateFormat, today)
	if err != nil {
		t.Fatalf("apitest: invalid date %q: %v", today, err)
	}

	s := &Server{
		token:    Token,
		clock:    func() time.Time { return now },
		habits:   make(map[int]*models.Habit),
		checkins: make(map[checkinKey]*models.Checkin),
		nextID:   1,
		calls:    make(map[string]int),
		quote:    models.Quote{Text: "We are what we repeatedly do.", Author: "Will Durant"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /habits", s.listHabits)
	mux.HandleFunc("POST /habits", s.createHabit)
	mux.HandleFunc("GET /habits/{id}", s.getHabit)
	mux.HandleFunc("PUT /habits/{id}", s.updateHabit)
	mux.HandleFunc("DELETE /habits/{id}", s.deleteHabit)
	mux.HandleFunc("GET /habits/{id}/checkins", s.listCheckins)
	mux.HandleFunc("POST /habits/{id}/checkins", s.upsertCheckin)
	mux.HandleFunc("POST /checkins/batch", s.batchCheckins)
	mux.HandleFunc("GET /analytics/summary", s.summary)
	mux.HandleFunc("GET /analytics/heatmap", s.heatmap)
	mux.HandleFunc("GET /quotes/daily", s.dailyQuote)

	s.Server = httptest.NewServer(http.StripPrefix("/api", s.middleware(mux)))
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL to hand to api.New
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

// SetFail installs a failure injector (nil clears it)
func (s *Server) SetFail(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

// SetToken changes the accepted bearer token
func (s *Server) SetToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
}

// Calls returns how many requests hit "METHOD /path?query" (query omitted when empty)
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// TotalCalls returns how many requests hit paths starting with prefix
func (s *Server) TotalCalls(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.calls {
		if strings.HasPrefix(k, prefix) {
			n += v
		}
	}
	return n
}

// AddHabit stores a habit directly. A zero ID is assigned.
func (s *Server) AddHabit(h models.Habit) models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == 0 {
		h.ID = s.nextID
	}
	if h.ID >= s.nextID {
		s.nextID = h.ID + 1
	}
	if h.StartDate == "" {
		h.StartDate = utils.FormatDate(s.clock())
	}
	stored := h
	s.habits[h.ID] = &stored
	return stored
}

// SetCheckin stores a check-in directly, bypassing streak updates
func (s *Server) SetCheckin(habitID int, date string, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCheckin(habitID, date, status)
}

// Checkins returns every stored check-in for a habit, ordered by date
func (s *Server) Checkins(habitID int) []models.Checkin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkinsFor(habitID, "", "")
}

// Habit returns the stored habit
func (s *Server) Habit(id int) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, false
	}
	return *h, true
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		key := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		s.calls[key]++
		token, fail := s.token, s.fail
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}
		if fail != nil {
			if status := fail(r); status != 0 {
				writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	habits := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		habits = append(habits, *h)
	}
	sort.Slice(habits, func(i, j int) bool { return habits[i].ID < habits[j].ID })
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lookupHabit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var in models.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if fields := validateHabit(in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Validation failed", "errors": fields})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	h := &models.Habit{
		ID:          s.nextID,
		Name:        in.Name,
		Description: in.Description,
		TargetType:  in.TargetType,
		TargetDays:  in.TargetDays,
		StartDate:   in.StartDate,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	if h.StartDate == "" {
		h.StartDate = utils.FormatDate(now)
	}
	s.nextID++
	s.habits[h.ID] = h
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	var in models.HabitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if fields := validateHabit(in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Validation failed", "errors": fields})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lookupHabit(w, r)
	if !ok {
		return
	}
	now := s.clock()
	h.Name = in.Name
	h.Description = in.Description
	h.TargetType = in.TargetType
	h.TargetDays = in.TargetDays
	if in.StartDate != "" {
		h.StartDate = in.StartDate
	}
	h.UpdatedAt = &now
	s.recomputeStreaks(h)
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lookupHabit(w, r)
	if !ok {
		return
	}
	delete(s.habits, h.ID)
	for k := range s.checkins {
		if k.habitID == h.ID {
			delete(s.checkins, k)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCheckins(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lookupHabit(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.checkinsFor(h.ID, q.Get("start_date"), q.Get("end_date")))
}

func (s *Server) upsertCheckin(w http.ResponseWriter, r *http.Request) {
	var in models.CheckinInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if fields := validateCheckin(in.Date, in.Status); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Validation failed", "errors": fields})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lookupHabit(w, r)
	if !ok {
		return
	}
	c := s.putCheckin(h.ID, in.Date, in.Status)
	s.recomputeStreaks(h)
	writeJSON(w, http.StatusOK, models.StreakUpdate{
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
		Checkin:       c,
	})
}

func (s *Server) batchCheckins(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Checkins []models.BatchCheckin `json:"checkins"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range in.Checkins {
		if fields := validateCheckin(item.Date, item.Status); len(fields) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": fmt.Sprintf("Validation failed for item %d", i), "errors": fields})
			return
		}
		if _, ok := s.habits[item.HabitID]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Habit %d not found", item.HabitID)})
			return
		}
	}

	streaks := make(map[int]models.StreakUpdate)
	for _, item := range in.Checkins {
		s.putCheckin(item.HabitID, item.Date, item.Status)
	}
	for _, item := range in.Checkins {
		h := s.habits[item.HabitID]
		s.recomputeStreaks(h)
		streaks[h.ID] = models.StreakUpdate{CurrentStreak: h.CurrentStreak, LongestStreak: h.LongestStreak}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"streaks": streaks})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")

	s.mu.Lock()
	defer s.mu.Unlock()
	today := utils.FormatDate(s.clock())
	out := models.AnalyticsSummary{
		StartDate:   start,
		EndDate:     end,
		Period:      q.Get("period"),
		TotalHabits: len(s.habits),
	}
	for _, h := range s.habits {
		if t, err := time.Parse(constants.DateFormat, today); err == nil && schedule.HabitScheduled(*h, t) {
			out.ActiveHabits++
		}
		if h.LongestStreak > out.BestStreak {
			out.BestStreak = h.LongestStreak
		}
	}
	for k, c := range s.checkins {
		if k.date == today && c.Status == models.StatusCompleted {
			out.CompletedToday++
		}
		if inRange(k.date, start, end) {
			out.TotalCheckins++
			if c.Status == models.StatusCompleted {
				out.CompletedCheckins++
			}
		}
	}
	if out.TotalCheckins > 0 {
		out.CompletionRate = float64(out.CompletedCheckins) / float64(out.TotalCheckins) * 100
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")

	s.mu.Lock()
	defer s.mu.Unlock()
	payload := models.HeatmapPayload{
		StartDate: start,
		EndDate:   end,
		Habits:    make(map[int]map[string]models.Status),
	}
	for id := range s.habits {
		payload.Habits[id] = make(map[string]models.Status)
	}
	for k, c := range s.checkins {
		if inRange(k.date, start, end) {
			payload.Habits[k.habitID][k.date] = c.Status
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) dailyQuote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.quote)
}

// lookupHabit resolves {id}; callers hold s.mu
func (s *Server) lookupHabit(w http.ResponseWriter, r *http.Request) (*models.Habit, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid habit id"})
		return nil, false
	}
	h, ok := s.habits[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Habit not found"})
		return nil, false
	}
	return h, true
}

// putCheckin upserts by (habit, date); callers hold s.mu
func (s *Server) putCheckin(habitID int, date string, status models.Status) *models.Checkin {
	now := s.clock()
	k := checkinKey{habitID: habitID, date: date}
	if c, ok := s.checkins[k]; ok {
		c.Status = status
		c.UpdatedAt = &now
		return c
	}
	c := &models.Checkin{
		ID:        s.nextID,
		HabitID:   habitID,
		Date:      date,
		Status:    status,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	s.nextID++
	s.checkins[k] = c
	return c
}

// checkinsFor returns a habit's check-ins in [start, end]; callers hold s.mu
func (s *Server) checkinsFor(habitID int, start, end string) []models.Checkin {
	out := []models.Checkin{}
	for k, c := range s.checkins {
		if k.habitID == habitID && inRange(k.date, start, end) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// recomputeStreaks walks scheduled days from the start date to today.
// Today without a check-in does not break the current run.
func (s *Server) recomputeStreaks(h *models.Habit) {
	today := utils.StartOfDay(s.clock())
	start, err := time.Parse(constants.DateFormat, h.StartDate)
	if err != nil {
		start = today
	}

	run, longest := 0, 0
	for _, day := range utils.DaysBetween(start, today) {
		if !schedule.HabitScheduled(*h, day) {
			continue
		}
		c, ok := s.checkins[checkinKey{habitID: h.ID, date: utils.FormatDate(day)}]
		switch {
		case ok && c.Status == models.StatusCompleted:
			run++
			longest = max(longest, run)
		case !ok && utils.SameDay(day, today):
		default:
			run = 0
		}
	}
	h.CurrentStreak = run
	h.LongestStreak = max(longest, h.LongestStreak)
}

func validateHabit(in models.HabitInput) map[string]string {
	fields := make(map[string]string)
	switch {
	case strings.TrimSpace(in.Name) == "":
		fields["name"] = "Name is required"
	case len(in.Name) > constants.MaxHabitNameLen:
		fields["name"] = "Name must be at most 50 characters"
	}
	if !in.TargetType.Valid() {
		fields["target_type"] = "Target type must be daily, weekdays or custom"
	}
	if in.TargetType == models.TargetCustom && len(in.TargetDays) == 0 {
		fields["target_days"] = "Custom habits need at least one day"
	}
	if in.StartDate != "" {
		if _, err := time.Parse(constants.DateFormat, in.StartDate); err != nil {
			fields["start_date"] = "Start date must be YYYY-MM-DD"
		}
	}
	return fields
}

func validateCheckin(date string, status models.Status) map[string]string {
	fields := make(map[string]string)
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		fields["date"] = "Date must be YYYY-MM-DD"
	}
	if !status.Valid() {
		fields["status"] = "Status must be completed, missed or skipped"
	}
	return fields
}

func inRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
