package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fundamentals-agent/internal/agent"
	"fundamentals-agent/internal/chat"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/types"
)

// DateLayout is the wire format of end_date
const DateLayout = "2006-01-02"

// AgentName keys the agent's output under analyst_signals
const AgentName = "fundamentals_agent"

// requestError is a client mistake; its text is returned to the caller verbatim
type requestError string

func (e requestError) Error() string { return string(e) }

const (
	ErrInvalidTickers requestError = "Invalid tickers provided"
	ErrMissingEndDate requestError = "End date is required"
	ErrInvalidEndDate requestError = "End date must be formatted as YYYY-MM-DD"
	ErrInvalidBody    requestError = "Invalid request body"
)

type analysisRequest struct {
	Tickers json.RawMessage `json:"tickers"`
	EndDate string          `json:"end_date"`
}

// analystSignals maps agent name to per-ticker analyses
type analystSignals map[string]map[string]types.TickerAnalysis

type analysisData struct {
	Tickers        []string       `json:"tickers"`
	EndDate        string         `json:"end_date"`
	AnalystSignals analystSignals `json:"analyst_signals"`
}

type analysisResponse struct {
	Data analysisData `json:"data"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply          string         `json:"reply"`
	AnalystSignals analystSignals `json:"analyst_signals,omitempty"`
}

// parseAnalysisRequest validates the body in the order the checks are reported:
// tickers first, then the end date.
func parseAnalysisRequest(r *http.Request) ([]string, time.Time, error) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, time.Time{}, ErrInvalidBody
	}

	var tickers []string
	if len(req.Tickers) == 0 || json.Unmarshal(req.Tickers, &tickers) != nil || len(tickers) == 0 {
		return nil, time.Time{}, ErrInvalidTickers
	}

	endDate := strings.TrimSpace(req.EndDate)
	if endDate == "" {
		return nil, time.Time{}, ErrMissingEndDate
	}
	asOf, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return nil, time.Time{}, ErrInvalidEndDate
	}
	return tickers, asOf, nil
}

// handleAnalysis handles POST /api/analysis.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	tickers, asOf, err := parseAnalysisRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.agent.Analyze(r.Context(), tickers, asOf)
	if errors.Is(err, agent.ErrNoTickers) {
		writeError(w, http.StatusBadRequest, ErrInvalidTickers.Error())
		return
	}
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Analysis failed", err,
			"request_id", RequestID(r.Context()),
			"tickers", tickers,
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		Data: analysisData{
			Tickers:        result.Tickers,
			EndDate:        asOf.Format(DateLayout),
			AnalystSignals: analystSignals{AgentName: result.Analyses},
		},
	})
}

// handleChat handles POST /api/chat. Tickers are picked out of the message as $SYMBOL
// tokens and analyzed as of today.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidBody.Error())
		return
	}

	tickers := chat.ExtractTickers(req.Message)
	if len(tickers) == 0 {
		writeJSON(w, http.StatusOK, chatResponse{Reply: chat.UsageHint})
		return
	}

	result, err := s.agent.Analyze(r.Context(), tickers, s.now())
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Chat analysis failed", err,
			"request_id", RequestID(r.Context()),
			"tickers", tickers,
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:          chat.FormatResult(result),
		AnalystSignals: analystSignals{AgentName: result.Analyses},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
