package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lumon-ai/agentloop/memory"
)

type (
	chatRequest struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}

	chatResponse struct {
		Success    bool          `json:"success"`
		Answer     string        `json:"answer"`
		Iterations int           `json:"iterations"`
		Memory     []memory.Turn `json:"memory"`
	}

	resetRequest struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}

	ingestRequest struct {
		UserID       string `json:"userId"`
		DocumentName string `json:"documentName"`
		DocumentText string `json:"documentText"`
	}

	queryRequest struct {
		UserID   string `json:"userId"`
		Question string `json:"question"`
		TopK     int    `json:"topK"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	a := s.manager.Session(orAnon(req.UserID), orDefault(req.SessionID))
	result, err := a.Run(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("agent run failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "agent run failed")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success:    true,
		Answer:     result.Answer,
		Iterations: result.Iterations,
		Memory:     result.History,
	})
}

func (s *Server) handleAgentReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.manager.Reset(orAnon(req.UserID), orDefault(req.SessionID))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "agent memory cleared",
	})
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.DocumentName == "" || req.DocumentText == "" {
		writeError(w, http.StatusBadRequest, "userId, documentName and documentText are required")
		return
	}

	result, err := s.knowledge.IngestDocument(r.Context(), req.UserID, req.DocumentName, req.DocumentText)
	if err != nil {
		s.logger.Error("ingestion failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to ingest document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"documentId":   result.DocumentID,
		"documentName": result.DocumentName,
		"chunkCount":   result.ChunkCount,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	documents, err := s.knowledge.ListDocuments(r.Context(), userID)
	if err != nil {
		s.logger.Error("listing documents failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"documents": documents,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.knowledge.DeleteDocument(r.Context(), vars["userId"], vars["documentId"]); err != nil {
		s.logger.Error("deleting document failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleChatQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "userId and question are required")
		return
	}

	results, err := s.knowledge.Retrieve(r.Context(), req.UserID, req.Question, req.TopK)
	if err != nil {
		s.logger.Error("retrieval failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to retrieve documents")
		return
	}

	answer, err := s.synthesizer.Synthesize(r.Context(), req.Question, results)
	if err != nil {
		s.logger.Error("synthesis failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to synthesize answer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"question":   req.Question,
		"answer":     answer.Text,
		"chunksUsed": answer.UsedFragments,
		"sources":    answer.Sources,
	})
}

// handleChatStream streams the synthesized answer as it is generated. Each
// increment is flushed immediately; a client disconnect cancels the request
// context and stops generation.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "userId and question are required")
		return
	}

	results, err := s.knowledge.Retrieve(r.Context(), req.UserID, req.Question, req.TopK)
	if err != nil {
		s.logger.Error("retrieval failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to retrieve documents")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	err = s.synthesizer.SynthesizeStream(r.Context(), req.Question, results, func(delta string) error {
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		s.logger.Warn("stream aborted", slog.String("error", err.Error()))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func orAnon(userID string) string {
	if userID == "" {
		return "anon"
	}
	return userID
}

func orDefault(sessionID string) string {
	if sessionID == "" {
		return "default"
	}
	return sessionID
}
