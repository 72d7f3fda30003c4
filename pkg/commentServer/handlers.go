package commentServer

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

//go:embed send_page.html
var sendPageHTML string

// CommentRequest is the body of POST /comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// Status is the body of GET /status.
type Status struct {
	Accepted      int     `json:"accepted"`
	Rejected      int     `json:"rejected"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// handleRoot serves the comment entry page
func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sendPageHTML))
}

// handleComment queues one comment for launch. Accepts JSON or a form post.
func (ws *WebServer) handleComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			ws.reject()
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		req.Text = r.FormValue("text")
	}

	text := normalize(req.Text)
	switch {
	case text == "":
		ws.reject()
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	case utf8.RuneCountInString(text) > MaxCommentRunes:
		ws.reject()
		http.Error(w, "text is too long", http.StatusRequestEntityTooLarge)
		return
	}

	ws.post(func() { ws.launch(text) })

	ws.statsMu.Lock()
	ws.accepted++
	ws.statsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

// handleStatus reports submission counters
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ws.Status())
}

// Status returns the submission counters.
func (ws *WebServer) Status() Status {
	ws.mu.RLock()
	started := ws.started
	ws.mu.RUnlock()

	ws.statsMu.Lock()
	defer ws.statsMu.Unlock()
	st := Status{Accepted: ws.accepted, Rejected: ws.rejected}
	if !started.IsZero() {
		st.UptimeSeconds = time.Since(started).Seconds()
	}
	return st
}

func (ws *WebServer) reject() {
	ws.statsMu.Lock()
	ws.rejected++
	ws.statsMu.Unlock()
}

// normalize composes the text to NFC and collapses line breaks so a
// comment stays on one lane.
func normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
