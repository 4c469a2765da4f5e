package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mitcash/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parsePeriod reads year and month query parameters, defaulting to the
// current month.
func parsePeriod(r *http.Request) (core.Period, error) {
	now := time.Now()
	p := core.Period{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, core.ErrInvalidDate
		}
		p.Year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, core.ErrInvalidDate
		}
		p.Month = m
	}

	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

func parseKindPath(r *http.Request) (core.Kind, bool) {
	kind, err := core.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", false
	}
	return kind, true
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionRequest is the write payload. Amount is a decimal string so
// the client never does floating-point money arithmetic.
type transactionRequest struct {
	Date        string   `json:"date"`
	Amount      string   `json:"amount"`
	Source      string   `json:"source,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Recurring   bool     `json:"recurring"`
}

func (req *transactionRequest) toTransaction(kind core.Kind) (core.Transaction, error) {
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return core.Transaction{}, err
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		return core.Transaction{}, err
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if trimmed := sanitizeInput(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	tx := core.Transaction{
		Kind:        kind,
		Date:        date,
		Amount:      core.Money{Cents: cents},
		Source:      sanitizeInput(req.Source),
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Notes:       sanitizeInput(req.Notes),
		Tags:        tags,
		Recurring:   req.Recurring,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
