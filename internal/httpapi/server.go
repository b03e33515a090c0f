// Package httpapi exposes the dialogue engine and the lead CRM over HTTP: a
// JSON chat endpoint for operators, lead CRUD plus analysis, a websocket chat
// for prospects, and the usual health/metrics/perf surface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/salespilot-ai/salespilot/internal/config"
	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/engine"
	"github.com/salespilot-ai/salespilot/internal/observability"
	"github.com/salespilot-ai/salespilot/internal/session"
)

// Dialogue is the engine surface the transport needs.
type Dialogue interface {
	HandleTurn(ctx context.Context, sessionID, text string) engine.Directive
	LeadChat(ctx context.Context, leadID, text string) engine.LeadReply
	PerfSnapshot() observability.TurnStageSnapshot
}

type Server struct {
	cfg      config.Config
	dialogue Dialogue
	store    crm.Store
	sessions *session.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, dialogue Dialogue, store crm.Store, sessions *session.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		dialogue: dialogue,
		store:    store,
		sessions: sessions,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive a prospect chat
				// if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/chat", s.handleChat)

	r.Get("/v1/leads", s.handleListLeads)
	r.Post("/v1/leads", s.handleCreateLead)
	r.Get("/v1/leads/{id}", s.handleGetLead)
	r.Post("/v1/leads/{id}/analyze", s.handleAnalyzeLead)
	r.Post("/v1/leads/{id}/chat", s.handleLeadChat)
	r.Get("/v1/leads/{id}/chat/ws", s.handleLeadChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.Len(),
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.dialogue == nil {
		respondJSON(w, http.StatusOK, observability.TurnStageSnapshot{})
		return
	}
	respondJSON(w, http.StatusOK, s.dialogue.PerfSnapshot())
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = "default"
	}

	d := s.dialogue.HandleTurn(r.Context(), req.SessionID, req.Message)
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.store.Leads(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"count": len(leads),
	})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead crm.Lead
	if err := decodeJSON(r, &lead); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(lead.CompanyName) == "" {
		respondError(w, http.StatusBadRequest, "missing_company_name", "company_name is required")
		return
	}
	if !strings.Contains(lead.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid_email", "a valid email is required")
		return
	}

	created, err := s.store.CreateLead(r.Context(), lead)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (s *Server) handleAnalyzeLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}

	res := analyzeAndStore(r.Context(), s.store, lead)
	respondJSON(w, http.StatusOK, map[string]any{
		"lead_id":         lead.ID,
		"lead_score":      res.Score,
		"tier":            string(res.Tier),
		"status":          string(res.Status),
		"pain_points":     res.PainPoints,
		"budget_estimate": res.BudgetEstimate,
		"timeline":        res.Timeline,
	})
}

type leadChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleLeadChat(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}
	var req leadChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}
	respondJSON(w, http.StatusOK, s.dialogue.LeadChat(r.Context(), lead.ID, req.Message))
}

func (s *Server) handleLeadChatWS(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.leadFromPath(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		var req leadChatRequest
		if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Message) == "" {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = conn.WriteJSON(errorResponse{Error: "message is required", Code: "invalid_client_message"})
			continue
		}

		reply := s.dialogue.LeadChat(r.Context(), lead.ID, req.Message)
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// leadFromPath resolves the {id} path parameter; on failure it has already
// written the error response.
func (s *Server) leadFromPath(w http.ResponseWriter, r *http.Request) (crm.Lead, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_lead_id", "missing lead id")
		return crm.Lead{}, false
	}
	lead, err := s.store.LeadByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrLeadNotFound) {
			respondError(w, http.StatusNotFound, "lead_not_found", err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		}
		return crm.Lead{}, false
	}
	return lead, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
