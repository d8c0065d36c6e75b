package status

import (
	"encoding/json"
	"net/http"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

type stateResponse struct {
	On            bool      `json:"on"`
	RotationSpeed float64   `json:"rotation_speed"`
	Temperature   float64   `json:"temperature"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type healthResponse struct {
	Healthy       bool      `json:"healthy"`
	Attempts      uint64    `json:"attempts"`
	Successes     uint64    `json:"successes"`
	Failures      uint64    `json:"failures"`
	Skipped       uint64    `json:"skipped"`
	LastError     string    `json:"last_error,omitempty"`
	LastErrorCode string    `json:"last_error_code,omitempty"`
	LastSuccess   time.Time `json:"last_success,omitempty"`
	LastFailure   time.Time `json:"last_failure,omitempty"`
}

type boolRequest struct {
	Value *bool `json:"value"`
}

type floatRequest struct {
	Value *float64 `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.accessory.State()
	s.writeJSON(w, http.StatusOK, stateResponse{
		On:            st.Powered(),
		RotationSpeed: st.RotationSpeed,
		Temperature:   st.TemperatureCelsius,
		UpdatedAt:     st.UpdatedAt,
	})
}

func (s *Server) handleSetOn(w http.ResponseWriter, r *http.Request) {
	var req boolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		s.writeError(w, http.StatusBadRequest, errors.ErrInvalidArgument, "Expected {\"value\": bool}")
		return
	}

	s.accessory.SetOn(*req.Value)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSetRotationSpeed(w http.ResponseWriter, r *http.Request) {
	var req floatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		s.writeError(w, http.StatusBadRequest, errors.ErrInvalidArgument, "Expected {\"value\": number}")
		return
	}

	s.accessory.SetRotationSpeed(*req.Value)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.accessory.Stats()
	resp := healthResponse{
		Healthy:       stats.Successes > 0,
		Attempts:      stats.Attempts,
		Successes:     stats.Successes,
		Failures:      stats.Failures,
		Skipped:       stats.Skipped,
		LastError:     stats.LastError,
		LastErrorCode: string(stats.LastErrorCode),
		LastSuccess:   stats.LastSuccess,
		LastFailure:   stats.LastFailure,
	}

	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write status response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, errCode errors.ErrorCode, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg, Code: string(errCode)})
}
