package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
)

// ReviewBody is the request body for a single review. The proposal id comes from the path.
type ReviewBody struct {
	Decision   entities.Decision `json:"decision"`
	Notes      string            `json:"notes,omitempty"`
	FinalValue any               `json:"final_value,omitempty"`
}

// BatchBody is the request body for a batch review.
type BatchBody struct {
	Items []entities.ReviewRequest `json:"items"`
}

// CorrectionsResponse is the response body for a created correction request.
type CorrectionsResponse struct {
	Corrections []entities.Correction `json:"corrections"`
}

func actorID(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}

// POST /api/corrections
func (s *Server) handleCreateCorrection(w http.ResponseWriter, r *http.Request) {
	var in services.CorrectionInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.h.Proposals.HandleCorrect(r.Context(), actorID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CorrectionsResponse{Corrections: created})
}

// POST /api/submissions
func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var in services.SubmissionInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	sub, err := s.h.Proposals.HandleSubmit(r.Context(), actorID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// GET /api/{kind}?status=&limit=
func (s *Server) handleList(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryLimit(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.h.Proposals.HandleList(r.Context(), kind, r.URL.Query().Get("status"), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /api/{kind}/{id}
func (s *Server) handleGet(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.h.Proposals.HandleGet(r.Context(), kind, r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// POST /api/{kind}/{id}/review
func (s *Server) handleReview(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ReviewBody
		if err := decodeBody(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}

		outcome, err := s.h.Reviews.HandleReview(r.Context(), actorID(r), kind, entities.ReviewRequest{
			ProposalID: r.PathValue("id"),
			Decision:   body.Decision,
			Notes:      body.Notes,
			FinalValue: body.FinalValue,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// POST /api/{kind}/review-batch
func (s *Server) handleBatch(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body BatchBody
		if err := decodeBody(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.h.Reviews.HandleBatch(r.Context(), actorID(r), kind, body.Items)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /api/records/{slug}
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.h.Records.HandleShow(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/audit?record=&limit=
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.Audit.Handle(r.Context(), r.URL.Query().Get("record"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", entities.ErrValidation, raw)
	}
	return n, nil
}
