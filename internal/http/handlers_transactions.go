package http

import (
	"net/http"
	"strconv"

	"finman/internal/core"
)

type createTransactionRequest struct {
	FromUser    string `json:"from_user"`
	ToUser      string `json:"to_user"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid kind")
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid category")
		return
	}

	when, err := parseTime(req.Time)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid time")
		return
	}

	tx := core.Transaction{
		UserID:      requestUserID(r),
		FromUser:    sanitizeInput(req.FromUser),
		ToUser:      sanitizeInput(req.ToUser),
		Amount:      core.Money{Cents: cents},
		Kind:        kind,
		Category:    category,
		Description: sanitizeInput(req.Description),
		Time:        when,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, ok := s.ledger.Add(r.Context(), tx)
	if !ok {
		writeError(w, http.StatusInternalServerError, "transaction not saved")
		return
	}

	s.invalidateStats(tx.UserID)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list := s.ledger.ListForUser(r.Context(), requestUserID(r), limit)
	writeJSON(w, http.StatusOK, toTransactionPayloads(list))
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := core.Criteria{
		TargetUser: sanitizeInput(q.Get("target_user")),
	}

	var err error
	if criteria.StartTime, err = parseTime(q.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	if criteria.EndTime, err = parseEndTime(q.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}
	if v := q.Get("kind"); v != "" {
		if criteria.Kind, err = core.ParseKind(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid kind")
			return
		}
	}
	if v := q.Get("category"); v != "" {
		if criteria.Category, err = core.ParseCategory(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
	}

	list, err := s.query.Query(r.Context(), requestUserID(r), criteria)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Query failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionPayloads(list))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	// Deleting someone else's row must look identical to deleting a row
	// that never existed.
	userID := requestUserID(r)
	if !s.ledger.DeleteForUser(r.Context(), id, userID) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	s.invalidateStats(userID)
	w.WriteHeader(http.StatusNoContent)
}
