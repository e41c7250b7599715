// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pdiddy/ray-engine/internal/packet"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// ScoreResponse is the body of POST /v1/score.
type ScoreResponse struct {
	Output    *types.PipelineOutput `json:"output"`
	Signature *types.SignaturePair  `json:"signature,omitempty"`
}

// VerifyRequest is the body of POST /v1/verify.
type VerifyRequest struct {
	Packet    *types.ResponsePacket `json:"packet"`
	Output    *types.PipelineOutput `json:"output"`
	Signature types.SignaturePair   `json:"signature"`
}

// VerifyResponse is the body returned by POST /v1/verify.
type VerifyResponse struct {
	types.Verification
	OK bool `json:"ok"`
}

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Runs []types.RunSnapshot `json:"runs"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if bank, err := s.deps.Pipeline.Bank(); err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
	} else {
		body["bank_version"] = bank.Version()
	}
	writeJSON(w, http.StatusOK, body)
}

// score handles POST /v1/score
func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var run types.RunInput
	if !decode(w, r, &run) {
		return
	}

	res, err := s.deps.Pipeline.Run(r.Context(), run)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.Submit(res); err != nil {
			s.log.Error("queueing result", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Output: res.Output, Signature: res.Signature})
}

// verify handles POST /v1/verify
func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Packet == nil || req.Output == nil {
		writeError(w, http.StatusBadRequest, "packet and output are required")
		return
	}

	v, err := s.deps.Pipeline.Signer().Verify(req.Packet, req.Output, req.Signature)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Verification: v, OK: v.OK()})
}

// predict handles POST /v1/predict
func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Predictor.Predict(req.Runs))
}

// subjectPrediction handles GET /v1/subjects/{subject}/prediction
func (s *Server) subjectPrediction(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	subject := mux.Vars(r)["subject"]
	runs, err := s.deps.History.History(r.Context(), subject)
	if err != nil {
		s.log.Error("reading history", zap.String("subject_id", subject), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reading history")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Predictor.Predict(runs))
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, packet.ErrMissingInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, packet.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
