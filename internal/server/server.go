package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"TenangChat/internal/provider"
	"TenangChat/internal/safety"
	"TenangChat/internal/session"
	"TenangChat/internal/therapy"
)

// maxAudioUpload bounds voice uploads to 25 MB, the Whisper API limit.
const maxAudioUpload = 25 << 20

// Therapist is the orchestration capability the server depends on.
type Therapist interface {
	Respond(ctx context.Context, sessionID, text string) (therapy.Result, error)
	RespondValidated(ctx context.Context, sessionID, text string) (therapy.Validation, error)
}

// AudioBridge is the speech capability the server depends on.
type AudioBridge interface {
	Transcribe(ctx context.Context, audioData []byte) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Server wires the HTTP surface to the orchestrator, audio bridge, and
// session store.
type Server struct {
	therapist Therapist
	bridge    AudioBridge
	store     *session.Store
	logger    *slog.Logger
}

// New builds the HTTP handler with all routes registered.
func New(therapist Therapist, bridge AudioBridge, store *session.Store, logger *slog.Logger) http.Handler {
	s := &Server{therapist: therapist, bridge: bridge, store: store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/therapeutic-response", s.handleTherapeuticResponse)
	mux.HandleFunc("/therapeutic-response-validation", s.handleValidation)
	mux.HandleFunc("/voice-therapy", s.handleVoiceTherapy)
	mux.HandleFunc("/speech-to-text", s.handleSpeechToText)
	mux.HandleFunc("/text-to-speech", s.handleTextToSpeech)
	mux.HandleFunc("/session-info/", s.handleSessionInfo)
	mux.HandleFunc("/session/", s.handleDeleteSession)
	mux.HandleFunc("/sessions", s.handleListSessions)
	mux.HandleFunc("/crisis-resources", s.handleCrisisResources)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return withRequestLogging(logger, mux)
}

type textRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type therapyResponse struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Source    string `json:"source"`
	Severity  string `json:"severity"`
	SessionID string `json:"session_id"`
}

type modelReply struct {
	Text      string  `json:"text"`
	Model     string  `json:"model"`
	LatencyMS float64 `json:"latency_ms"`
}

type validationResponse struct {
	GPTResponse    *modelReply `json:"gpt_response"`
	ClaudeResponse *modelReply `json:"claude_response"`
	Primary        string      `json:"primary"`
	Consensus      bool        `json:"consensus"`
	Severity       string      `json:"severity"`
	SessionID      string      `json:"session_id"`
}

type voiceTherapyResponse struct {
	UserText   string  `json:"user_text"`
	ReplyText  string  `json:"reply_text"`
	ReplyAudio string  `json:"reply_audio"`
	Severity   string  `json:"severity"`
	SessionID  string  `json:"session_id"`
	Latency    float64 `json:"latency"`
}

type degradedResponse struct {
	Text            string           `json:"text"`
	Severity        string           `json:"severity"`
	CrisisResources safety.Resources `json:"crisis_resources"`
}

func (s *Server) handleTherapeuticResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	result, err := s.therapist.Respond(r.Context(), req.SessionID, req.Text)
	if err != nil {
		s.writeTherapyError(w, err, result.Severity)
		return
	}

	writeJSON(w, http.StatusOK, therapyResponse{
		Text:      result.Response.Text,
		Provider:  result.Response.Provider,
		Source:    result.Source,
		Severity:  result.Severity.String(),
		SessionID: result.SessionID,
	})
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	v, err := s.therapist.RespondValidated(r.Context(), req.SessionID, req.Text)
	if err != nil {
		s.writeTherapyError(w, err, v.Severity)
		return
	}

	writeJSON(w, http.StatusOK, validationResponse{
		GPTResponse:    toModelReply(v.GPT),
		ClaudeResponse: toModelReply(v.Claude),
		Primary:        v.Primary,
		Consensus:      v.Consensus,
		Severity:       v.Severity.String(),
		SessionID:      v.SessionID,
	})
}

func (s *Server) handleVoiceTherapy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	start := time.Now()

	audioData, sessionID, ok := readAudioUpload(w, r)
	if !ok {
		return
	}

	userText, err := s.bridge.Transcribe(r.Context(), audioData)
	if err != nil {
		s.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "Maaf, saya tidak dapat mendengar suara Anda dengan jelas. Silakan coba lagi.")
		return
	}

	result, err := s.therapist.Respond(r.Context(), sessionID, userText)
	if err != nil {
		s.writeTherapyError(w, err, result.Severity)
		return
	}

	replyAudio, err := s.bridge.Synthesize(r.Context(), result.Response.Text)
	if err != nil {
		s.logger.Error("synthesis failed", "session_id", result.SessionID, "error", err)
		writeError(w, http.StatusBadGateway, "Maaf, audio tidak dapat dibuat. Silakan coba lagi.")
		return
	}

	writeJSON(w, http.StatusOK, voiceTherapyResponse{
		UserText:   userText,
		ReplyText:  result.Response.Text,
		ReplyAudio: base64.StdEncoding.EncodeToString(replyAudio),
		Severity:   result.Severity.String(),
		SessionID:  result.SessionID,
		Latency:    time.Since(start).Seconds(),
	})
}

func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	audioData, _, ok := readAudioUpload(w, r)
	if !ok {
		return
	}

	text, err := s.bridge.Transcribe(r.Context(), audioData)
	if err != nil {
		s.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "Maaf, saya tidak dapat mendengar suara Anda dengan jelas. Silakan coba lagi.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleTextToSpeech(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	audioData, err := s.bridge.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "Maaf, audio tidak dapat dibuat. Silakan coba lagi.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"audio": base64.StdEncoding.EncodeToString(audioData),
		"text":  req.Text,
	})
}

// handleSessionInfo serves GET /session-info/{id}. An unknown session is an
// empty summary, not an error.
func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/session-info/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	info, ok := s.store.Info(id)
	if !ok {
		info = session.Info{ID: id}
	}
	writeJSON(w, http.StatusOK, info)
}

// handleDeleteSession serves DELETE /session/{id}. Deleting an unknown id
// succeeds.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/session/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	s.store.Delete(id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "session " + id + " cleared"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ids := s.store.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_sessions": ids,
		"total_sessions":  len(ids),
	})
}

func (s *Server) handleCrisisResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, safety.CrisisResources())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tenangchat",
	})
}

// writeTherapyError maps orchestration failures to safe responses. Raw
// provider errors never reach the caller; exhausted providers get the
// apology plus the crisis resource list.
func (s *Server) writeTherapyError(w http.ResponseWriter, err error, severity safety.Tier) {
	if errors.Is(err, therapy.ErrAllProvidersUnavailable) {
		s.logger.Error("all providers unavailable")
		writeJSON(w, http.StatusServiceUnavailable, degradedResponse{
			Text:            therapy.ApologyMessage,
			Severity:        severity.String(),
			CrisisResources: safety.CrisisResources(),
		})
		return
	}
	s.logger.Error("therapy request failed", "error", err)
	writeError(w, http.StatusInternalServerError, therapy.ApologyMessage)
}

func decodeTextRequest(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return textRequest{}, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return textRequest{}, false
	}
	return req, true
}

// readAudioUpload accepts either a multipart form with an audio_file field
// or a raw body, plus an optional session_id form value or query parameter.
func readAudioUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return nil, "", false
		}
		file, _, err := r.FormFile("audio_file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "audio_file is required")
			return nil, "", false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			writeError(w, http.StatusBadRequest, "audio_file is empty")
			return nil, "", false
		}
		return data, r.FormValue("session_id"), true
	}

	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "audio body is empty")
		return nil, "", false
	}
	return data, r.URL.Query().Get("session_id"), true
}

func toModelReply(resp *provider.Response) *modelReply {
	if resp == nil {
		return nil
	}
	return &modelReply{
		Text:      resp.Text,
		Model:     resp.Model,
		LatencyMS: float64(resp.Latency.Milliseconds()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
