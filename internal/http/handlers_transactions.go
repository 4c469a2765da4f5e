package http

import (
	"log/slog"
	"net/http"

	"mitcash/internal/core"
	applog "mitcash/internal/log"
)

type listResponse struct {
	Success bool               `json:"success"`
	Records []core.Transaction `json:"records"`
}

type createResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type okResponse struct {
	Success bool `json:"success"`
}

// handleListTransactions returns a kind's transactions, scoped to a period
// unless all=true is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}

	category := sanitizeInput(r.URL.Query().Get("category"))

	if r.URL.Query().Get("all") == "true" {
		res := s.dashboard.FetchAllOfKind(r.Context(), kind)
		writeJSON(w, http.StatusOK, listResponse{Success: res.Success, Records: nonNil(filterCategory(res.Records, category))})
		return
	}

	p, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	res := s.dashboard.FetchKindByPeriod(r.Context(), kind, p)
	writeJSON(w, http.StatusOK, listResponse{Success: res.Success, Records: nonNil(filterCategory(res.Records, category))})
}

// filterCategory narrows records to one exact category name. An empty
// filter returns the input unchanged.
func filterCategory(records []core.Transaction, category string) []core.Transaction {
	if category == "" {
		return records
	}
	var out []core.Transaction
	for _, tx := range records {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction(kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !s.knownCategory(tx) {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}

	id, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		s.logs.LogError(r.Context(), "Create transaction failed", err,
			applog.ComponentTransaction, "create", applog.NewFields().WithTransaction(string(kind), tx.Label(), tx.Amount.Cents))
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.logs.LogTransactionCreated(r.Context(), string(kind), tx.Label(), tx.Amount.Cents, id)
	s.summaryCache.PurgePrefix(summaryCachePrefix)
	writeJSON(w, http.StatusCreated, createResponse{Success: true, ID: id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}
	id := r.PathValue("id")

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction(kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !s.knownCategory(tx) {
		writeError(w, http.StatusUnprocessableEntity, "unknown category")
		return
	}

	if err := s.transactions.Update(r.Context(), kind, id, tx); err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed",
			"kind", kind, "id", id, "error", err)
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	s.summaryCache.PurgePrefix(summaryCachePrefix)
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}
	id := r.PathValue("id")

	if err := s.transactions.Delete(r.Context(), kind, id); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed",
			"kind", kind, "id", id, "error", err)
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	s.summaryCache.PurgePrefix(summaryCachePrefix)
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

// knownCategory checks a non-empty category against the registry. Orphans
// may exist in stored data after a category is removed, but new writes must
// name a registered category.
func (s *Server) knownCategory(tx core.Transaction) bool {
	if tx.Category == "" || s.registry == nil {
		return true
	}
	return s.registry.Exists(tx.Category)
}

func nonNil(records []core.Transaction) []core.Transaction {
	if records == nil {
		return []core.Transaction{}
	}
	return records
}
