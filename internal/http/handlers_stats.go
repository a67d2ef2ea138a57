package http

import (
	"net/http"
	"strconv"
	"time"

	"finman/internal/core"
)

func (s *Server) handlePeriodStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseTime(q.Get("start"))
	if err != nil || start.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid or missing start time")
		return
	}
	end, err := parseEndTime(q.Get("end"))
	if err != nil || end.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid or missing end time")
		return
	}

	userID := requestUserID(r)
	key := s.statsCacheKey(userID, start.Format(core.TimeLayout), end.Format(core.TimeLayout))

	if cached, found := s.statsCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Period stats cache hit", "user_id", userID)
		writeJSON(w, http.StatusOK, toPeriodStatsPayload(cached))
		return
	}

	stats, err := s.stats.PeriodStats(r.Context(), userID, start, end)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Period stats failed", "user_id", userID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}

	s.statsCache.Set(key, stats)
	writeJSON(w, http.StatusOK, toPeriodStatsPayload(stats))
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var start, end time.Time
	var err error
	if start, err = parseTime(q.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	if end, err = parseEndTime(q.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}

	ranks, err := s.stats.TopCategories(r.Context(), requestUserID(r), limit, start, end)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Top categories failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toCategoryRankPayloads(ranks))
}
