package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_rates/internal/app"
	"hotel_rates/internal/domain"
	"hotel_rates/internal/pricing"
)

const maxBody = 1 << 20

type Handlers struct {
	Quotes     *app.QuoteService
	Allotments *app.AllotmentService
	// QuoteRPS/QuoteBurst throttle POST /v1/quotes per client; 0 disables.
	QuoteRPS   float64
	QuoteBurst int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.With(RateLimit(h.QuoteRPS, h.QuoteBurst)).Post("/quotes", h.createQuote)
		r.Post("/quotes/rooms", h.quoteRooms)
		r.Post("/allotments/reserve", h.reserve)
		r.Post("/allotments/release", h.release)
		r.Post("/combinations/generate", h.generateCombinations)
		r.Post("/combinations/recalculate", h.recalculateCombinations)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeProblem(w, http.StatusBadRequest, "Capacity Exceeded", err.Error())
	case app.IsClientError(err):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "request did not complete in time")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// decode reads a JSON body into dst and runs struct validation.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func noCache(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache") ||
		r.URL.Query().Get("nocache") == "true"
}

func (h *Handlers) createQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decode(w, r, &req) {
		return
	}
	q := req.toQuery()
	q.NoCache = noCache(r)

	out, err := h.Quotes.CalculatePriceWithCampaigns(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Quote-ID", out.ID)
	if out.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) quoteRooms(w http.ResponseWriter, r *http.Request) {
	var req roomsRequest
	if !decode(w, r, &req) {
		return
	}
	qs := make([]app.Query, 0, len(req.Rooms))
	for _, room := range req.Rooms {
		q := room.toQuery()
		q.NoCache = noCache(r)
		qs = append(qs, q)
	}
	out, err := h.Quotes.QuoteRooms(r.Context(), qs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) reserve(w http.ResponseWriter, r *http.Request) {
	h.allotment(w, r, h.Allotments.Reserve)
}

func (h *Handlers) release(w http.ResponseWriter, r *http.Request) {
	h.allotment(w, r, h.Allotments.Release)
}

func (h *Handlers) allotment(w http.ResponseWriter, r *http.Request, op func(context.Context, app.AllotmentRequest) (app.AllotmentResult, error)) {
	var req allotmentRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := op(r.Context(), req.toRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

func (h *Handlers) generateCombinations(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Occupancy.Validate(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Occupancy", err.Error())
		return
	}
	tmpl := &domain.MultiplierTemplate{AdultMultipliers: req.AdultMultipliers, ChildMultipliers: req.ChildMultipliers}
	if err := pricing.ValidateTemplate(tmpl, nil); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Multipliers", err.Error())
		return
	}
	entries, err := pricing.GenerateCombinationTable(req.Occupancy, req.AgeGroups, req.AdultMultipliers, req.ChildMultipliers)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Occupancy", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, combinationsResponse{Count: len(entries), Entries: entries})
}

func (h *Handlers) recalculateCombinations(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if !decode(w, r, &req) {
		return
	}
	tmpl := &domain.MultiplierTemplate{
		AdultMultipliers: req.AdultMultipliers,
		ChildMultipliers: req.ChildMultipliers,
		CombinationTable: req.Table,
	}
	if err := pricing.ValidateTemplate(tmpl, &domain.Occupancy{MinAdults: max(req.MinAdults, 1)}); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Multipliers", err.Error())
		return
	}
	entries := pricing.RecalculateCombinationTable(req.Table, req.AdultMultipliers, req.ChildMultipliers)
	writeJSON(w, http.StatusOK, combinationsResponse{Count: len(entries), Entries: entries})
}
