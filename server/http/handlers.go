package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	agent "github.com/qiwang999/service-topo-agent"
	"github.com/qiwang999/service-topo-agent/orchestrator"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

type handler struct {
	agent *agent.Agent
}

type chatRequest struct {
	Query          string              `json:"query"`
	History        []orchestrator.Turn `json:"history,omitempty"`
	ConversationId string              `json:"conversation_id,omitempty"`
	RunMode        string              `json:"run_mode,omitempty"`
}

type chatResponse struct {
	Response        string              `json:"response"`
	GeneratedCypher string              `json:"generated_cypher"`
	ConversationId  string              `json:"conversation_id"`
	Retries         int                 `json:"retries"`
	CacheHit        bool                `json:"cache_hit"`
	CacheSimilarity float64             `json:"cache_similarity,omitempty"`
	Exhausted       bool                `json:"exhausted,omitempty"`
	PromptMetadata  map[string]any      `json:"prompt_metadata,omitempty"`
	UpdatedHistory  []orchestrator.Turn `json:"updated_history"`
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Query) == 0 {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var opts []agent.RespondOption
	switch req.RunMode {
	case "":
	case "fast":
		opts = append(opts, agent.WithRunFast(true))
	case "standard":
		opts = append(opts, agent.WithRunFast(false))
	default:
		writeError(w, http.StatusBadRequest, "run_mode must be standard or fast")
		return
	}

	result, err := h.agent.Respond(r.Context(), req.History, req.Query, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conversationId := req.ConversationId
	if len(conversationId) == 0 {
		conversationId = uuid.NewString()
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:        result.Summary,
		GeneratedCypher: result.Cypher,
		ConversationId:  conversationId,
		Retries:         result.Retries,
		CacheHit:        result.CacheHit,
		CacheSimilarity: result.CacheSimilarity,
		Exhausted:       result.Exhausted,
		PromptMetadata:  result.Metadata,
		UpdatedHistory:  result.History,
	})
}

type feedbackRequest struct {
	Question        string `json:"question"`
	GeneratedCypher string `json:"generated_cypher"`
	CorrectedCypher string `json:"corrected_cypher"`
	Rating          int    `json:"rating"`
}

func (h *handler) feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Question) == 0 || len(req.CorrectedCypher) == 0 {
		writeError(w, http.StatusBadRequest, "question and corrected_cypher are required")
		return
	}

	err := h.agent.Feedback(r.Context(), vectorstore.Feedback{
		Question:        req.Question,
		GeneratedCypher: req.GeneratedCypher,
		CorrectedCypher: req.CorrectedCypher,
		Rating:          req.Rating,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "feedback recorded"})
}

type similarRequest struct {
	Question string `json:"question"`
}

func (h *handler) similarExamples(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Question) == 0 {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	examples, err := h.agent.SimilarExamples(r.Context(), req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"examples": examples})
}

func (h *handler) similarFeedback(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Question) == 0 {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	feedback, err := h.agent.SimilarFeedback(r.Context(), req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

func (h *handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.agent.CacheStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.agent.ClearCache(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

func (h *handler) seedEmbeddings(w http.ResponseWriter, r *http.Request) {
	n, err := h.agent.SeedEmbeddings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "embeddings initialized", "examples_seeded": n})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
