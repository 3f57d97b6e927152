package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/store"
)

const maxLeaderboardSize = 50

type LeaderboardStore interface {
	WeeklyLeaderboard(ctx context.Context, day time.Time, limit int) ([]store.LeaderboardEntry, error)
}

type LeaderboardHandler struct {
	steps  LeaderboardStore
	logger *zap.Logger
	now    func() time.Time
}

func NewLeaderboardHandler(steps LeaderboardStore, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{steps: steps, logger: logger, now: time.Now}
}

type leaderboardRow struct {
	Rank int `json:"rank"`
	store.LeaderboardEntry
}

type leaderboardResponse struct {
	From    string           `json:"from"`
	To      string           `json:"to"`
	Entries []leaderboardRow `json:"entries"`
}

// Weekly ranks users by steps over the trailing week. Optional query params: date, limit.
func (h *LeaderboardHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := parseDay(q.Get("date"), h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := store.DefaultLeaderboardSize
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLeaderboardSize {
			http.Error(w, "limit must be between 1 and 50", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.steps.WeeklyLeaderboard(r.Context(), day, limit)
	if err != nil {
		h.logger.Error("weekly leaderboard", zap.Error(err))
		http.Error(w, "could not fetch leaderboard", http.StatusInternalServerError)
		return
	}
	rows := make([]leaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, leaderboardRow{Rank: i + 1, LeaderboardEntry: e})
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		From:    day.AddDate(0, 0, -store.HistoryWindowDays).Format(dateLayout),
		To:      day.Format(dateLayout),
		Entries: rows,
	})
}
