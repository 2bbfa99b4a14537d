package http

import (
	"net/http"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createRecurringRequest struct {
	WalletID    uuid.UUID  `json:"wallet_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Kind        string     `json:"kind"`
	Amount      core.Money `json:"amount"`
	Frequency   string     `json:"frequency"`
	StartDate   string     `json:"start_date"`
	EndDate     *string    `json:"end_date"`
	Description string     `json:"description"`
}

// An explicit "end_date": null clears the end date.
type updateRecurringRequest struct {
	WalletID    *uuid.UUID   `json:"wallet_id"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	Amount      *core.Money  `json:"amount"`
	Frequency   *string      `json:"frequency"`
	StartDate   *string      `json:"start_date"`
	EndDate     nullableDate `json:"end_date"`
	Description *string      `json:"description"`
}

func parseFrequency(s string) (core.Frequency, error) {
	f, err := core.ParseFrequency(s)
	if err != nil {
		return "", core.Invalid("frequency", "must be daily, weekly, monthly or yearly")
	}
	return f, nil
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rules, err := s.svc.Recurring.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createRecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.CreateRecurringInput{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: sanitizeInput(req.Description),
	}
	if in.Kind, err = parseKind(req.Kind); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Frequency, err = parseFrequency(req.Frequency); err != nil {
		writeError(w, r, err)
		return
	}
	if in.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		writeError(w, r, err)
		return
	}
	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.EndDate = &end
	}

	rule, err := s.svc.Recurring.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := s.svc.Recurring.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateRecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.UpdateRecurringInput{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		EndDate:     req.EndDate.Value,
		SetEndDate:  req.EndDate.Set,
		Description: sanitizePtr(req.Description),
	}
	if req.Frequency != nil {
		f, err := parseFrequency(*req.Frequency)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Frequency = &f
	}
	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.StartDate = &start
	}

	rule, err := s.svc.Recurring.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Recurring.SoftDelete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
