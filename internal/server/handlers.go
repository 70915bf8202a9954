package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// StartResponse is returned by POST /bot/start.
type StartResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// APIKeyRequest is the body of the API key routes.
type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// APIKeyTestResponse reports whether a key was accepted.
type APIKeyTestResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// TranslateResponse carries the translated text.
type TranslateResponse struct {
	Translation string `json:"translation"`
}

// handleStart begins a run in the background and returns its id.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Settings.AppData(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	if data.IsEmpty() {
		s.failure(w, runner.ErrNoAppData)
		return
	}
	s.deps.Bot.SetAppData(data)

	runID, err := s.deps.Bot.Begin()
	if err != nil {
		s.failure(w, err)
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.deps.Bot.Run(s.baseCtx); err != nil {
			log.Printf("[SERVER] Run %s ended with error: %v", runID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, StartResponse{RunID: runID.String(), Status: string(runner.PhaseRunning)})
}

// handleStop asks the active run to stop before its next language.
func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.deps.Bot.Stop()
	s.jsonResponse(w, http.StatusOK, s.deps.Bot.State())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Bot.State())
}

// handleEvents streams runner events until the client disconnects. The
// first event is a state snapshot.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, unsubscribe := s.deps.Broker.Subscribe()
	defer unsubscribe()

	if err := sse.WriteEvent("state", s.deps.Bot.State()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent(string(event.Type), event); err != nil {
				log.Printf("[SERVER] Error writing SSE event: %v", err)
				return
			}
		}
	}
}

func (s *Server) handleGetAppData(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Settings.AppData(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	if data == nil {
		data = &types.AppData{}
	}
	s.jsonResponse(w, http.StatusOK, data)
}

// handlePutAppData saves the listing and refreshes the runner's copy.
func (s *Server) handlePutAppData(w http.ResponseWriter, r *http.Request) {
	var data types.AppData
	if err := decodeJSON(w, r, &data); err != nil {
		s.failure(w, err)
		return
	}
	if err := s.deps.Settings.SaveAppData(r.Context(), data); err != nil {
		s.failure(w, err)
		return
	}
	s.deps.Bot.SetAppData(&data)
	s.jsonResponse(w, http.StatusOK, data)
}

func (s *Server) handleGetToolSettings(w http.ResponseWriter, r *http.Request) {
	ts, err := s.deps.Settings.ToolSettings(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ts)
}

func (s *Server) handlePutToolSettings(w http.ResponseWriter, r *http.Request) {
	var ts types.ToolSettings
	if err := decodeJSON(w, r, &ts); err != nil {
		s.failure(w, err)
		return
	}
	if err := s.deps.Settings.SaveToolSettings(r.Context(), ts); err != nil {
		s.failure(w, err)
		return
	}
	s.settingsChanged(r.Context())
	s.jsonResponse(w, http.StatusOK, ts.WithDefaults())
}

func (s *Server) handlePutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		s.failure(w, &ErrValidation{Field: "api_key", Message: "is required"})
		return
	}
	if err := s.deps.Settings.SaveAPIKey(r.Context(), key); err != nil {
		s.failure(w, err)
		return
	}
	s.settingsChanged(r.Context())
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleTestAPIKey probes the key in the body, or the configured key when
// the body carries none.
func (s *Server) handleTestAPIKey(w http.ResponseWriter, r *http.Request) {
	if s.deps.TestAPIKey == nil {
		s.errorResponse(w, http.StatusNotImplemented, "key testing is not available")
		return
	}

	var req APIKeyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.failure(w, err)
			return
		}
	}

	key, err := settings.ResolveAPIKey(r.Context(), req.APIKey, s.deps.Settings)
	if err != nil {
		s.failure(w, err)
		return
	}
	if key == "" {
		s.failure(w, &ErrValidation{Field: "api_key", Message: "no key given and none saved"})
		return
	}

	valid, err := s.deps.TestAPIKey(r.Context(), key)
	resp := APIKeyTestResponse{Valid: valid}
	if err != nil {
		resp.Error = err.Error()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleTranslate translates a single text with the saved tool settings.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Translator == nil {
		s.errorResponse(w, http.StatusNotImplemented, "translation is not available")
		return
	}

	var req TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.failure(w, &ErrValidation{Field: "text", Message: "is required"})
		return
	}

	text, err := s.deps.Translator.TranslateText(r.Context(), types.TranslationRequest{
		SourceText:     req.Text,
		TargetLanguage: req.TargetLanguage,
	})
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TranslateResponse{Translation: text})
}

func (s *Server) settingsChanged(ctx context.Context) {
	if s.deps.OnSettingsChanged == nil {
		return
	}
	if err := s.deps.OnSettingsChanged(ctx); err != nil {
		log.Printf("[SERVER] Could not apply new settings: %v", err)
	}
}
