package commentServer

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launcher struct {
	mu       sync.Mutex
	posted   []func()
	launched []string
}

func (l *launcher) post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

func (l *launcher) launch(text string) {
	l.launched = append(l.launched, text)
}

func (l *launcher) run() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
}

func newTestServer() (*WebServer, *launcher) {
	l := &launcher{}
	return NewWebServer("127.0.0.1:0", l.post, l.launch), l
}

func TestHandleComment_JSONIsPostedToLoop(t *testing.T) {
	ws, l := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/comment", strings.NewReader(`{"text":"  hello\nworld "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	ws.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, l.launched, "launch runs only when the loop drains")
	l.run()
	assert.Equal(t, []string{"hello world"}, l.launched)
	assert.Equal(t, 1, ws.Status().Accepted)
}

func TestHandleComment_Form(t *testing.T) {
	ws, l := newTestServer()
	form := url.Values{"text": {"弹幕"}}
	req := httptest.NewRequest(http.MethodPost, "/comment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	ws.Handler().ServeHTTP(rec, req)
	l.run()

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"弹幕"}, l.launched)
}

func TestHandleComment_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		code   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, `{"text":`, http.StatusBadRequest},
		{"blank", http.MethodPost, `{"text":"   "}`, http.StatusBadRequest},
		{"too long", http.MethodPost, `{"text":"` + strings.Repeat("x", MaxCommentRunes+1) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ws, l := newTestServer()
			req := httptest.NewRequest(tc.method, "/comment", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			ws.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			assert.Empty(t, l.posted)
		})
	}
}

func TestHandleStatus(t *testing.T) {
	ws, _ := newTestServer()
	ws.reject()
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, 1, st.Rejected)
	assert.Zero(t, st.Accepted)
}

func TestHandleRoot(t *testing.T) {
	ws, _ := newTestServer()
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/comment")

	rec = httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebServer_StartStop(t *testing.T) {
	ws, l := newTestServer()
	require.NoError(t, ws.Start())
	assert.True(t, ws.running())
	assert.Error(t, ws.Start(), "second start")

	resp, err := http.Post(ws.URL()+"/comment", "application/json", strings.NewReader(`{"text":"live"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.NoError(t, ws.Stop())
	assert.False(t, ws.running())
	l.run()
	assert.Equal(t, []string{"live"}, l.launched)
}

func TestWebServer_ShareCode(t *testing.T) {
	ws, _ := newTestServer()
	assert.Empty(t, ws.ShareURL())
	_, err := ws.QRCode(128)
	assert.Error(t, err, "not started")

	require.NoError(t, ws.Start())
	t.Cleanup(func() { ws.Stop() })

	assert.Equal(t, ws.URL(), ws.ShareURL(), "explicit host is kept")
	data, err := ws.QRCode(128)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", normalize(" a\n b\t\tc "))
	assert.Equal(t, "\u00e9", normalize("e\u0301"), "decomposed accents are composed")
}
