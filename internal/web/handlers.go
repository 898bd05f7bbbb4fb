package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edgard/hubermanchat/internal/chat"
	"github.com/edgard/hubermanchat/internal/domain/model"
)

const sessionCookie = "huberman_session"

// RegisterRoutes attaches the chat endpoints to the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Post("/", s.handleSubmit)
	r.Get("/api/session", s.handleSession)
}

// --- DTOs ---

type pageData struct {
	Title       string
	Icon        string
	Placeholder string
	Messages    []pageMessage
	Notices     []chat.Notice
}

type pageMessage struct {
	Role model.Role
	Body template.HTML
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	State     string          `json:"state"`
	Messages  []model.Message `json:"messages"`
	Notices   []chat.Notice   `json:"notices,omitempty"`
}

type submitResponse struct {
	Turn  *chat.Turn `json:"turn,omitempty"`
	Error string     `json:"error,omitempty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	data := pageData{
		Title:       s.ui.Title,
		Icon:        s.ui.Icon,
		Placeholder: s.ui.Placeholder,
		Messages:    s.renderMessages(sess.Conversation.Messages()),
		Notices:     sess.TakeNotices(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page", "session_id", sess.ID, "error", err)
	}
}

// renderMessages formats the history. Replies are Markdown, user input is
// shown verbatim.
func (s *Server) renderMessages(msgs []model.Message) []pageMessage {
	out := make([]pageMessage, 0, len(msgs))
	for _, m := range msgs {
		body := template.HTML(template.HTMLEscapeString(m.Content))
		if m.Role == model.RoleAssistant {
			body = s.sanitizer.HTML(m.Content)
		}
		out = append(out, pageMessage{Role: m.Role, Body: body})
	}
	return out
}

// handleSubmit runs one turn. Browsers are redirected back to the page,
// JSON clients get the turn itself. A reply is sent as soon as it exists;
// notices raised while logging it show up on the next page render or
// /api/session call.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")

	prompt, err := readPrompt(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	replied := false
	onReply := func(reply model.Message) {
		replied = true
		if wantsJSON {
			user := model.Message{Role: model.RoleUser, Content: prompt}
			writeJSON(w, http.StatusOK, submitResponse{Turn: &chat.Turn{User: user, Reply: &reply}})
		} else {
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}
		if err := http.NewResponseController(w).Flush(); err != nil {
			s.log.DebugContext(r.Context(), "Response writer cannot flush", "error", err)
		}
	}

	turn, err := s.loop.Submit(r.Context(), sess, prompt, onReply)
	if replied {
		return
	}

	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		if wantsJSON {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case errors.Is(err, chat.ErrBusy):
		if wantsJSON {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		sess.AddNotices(chat.Notice{Level: chat.NoticeWarning, Text: "Still thinking about your last message..."})
	case errors.Is(err, chat.ErrBackendUnavailable):
		if wantsJSON {
			sess.TakeNotices()
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	case err != nil:
		s.log.ErrorContext(r.Context(), "Unexpected submission failure", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not process message")
		return
	}

	if wantsJSON {
		// Notices are delivered with the turn, not on the next page render.
		sess.TakeNotices()
		writeJSON(w, http.StatusOK, submitResponse{Turn: turn})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID,
		State:     sess.State().String(),
		Messages:  sess.Conversation.Messages(),
		Notices:   sess.TakeNotices(),
	})
}

// session returns the caller's session, starting a new one when the cookie
// is missing or the session has ended.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *chat.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.registry.Get(c.Value); ok {
			return sess
		}
	}

	sess := s.registry.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func readPrompt(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Prompt, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("prompt"), nil
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
