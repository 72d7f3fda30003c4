// Package commentServer accepts comments over HTTP so viewers on the same
// network can send danmaku to the screen from a phone.
package commentServer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skip2/go-qrcode"
)

// MaxCommentRunes caps the length of a single comment.
const MaxCommentRunes = 100

// WebServer manages the HTTP server for comment submission.
type WebServer struct {
	server    *http.Server
	listener  net.Listener
	isRunning bool
	mu        sync.RWMutex
	addr      string
	post      func(func())
	launch    func(text string)
	started   time.Time

	statsMu  sync.Mutex
	accepted int
	rejected int
}

// NewWebServer creates a server that hands each accepted comment to launch
// through post, which must run the callback on the UI loop.
func NewWebServer(addr string, post func(func()), launch func(text string)) *WebServer {
	return &WebServer{
		addr:   addr,
		post:   post,
		launch: launch,
	}
}

// Handler returns the request multiplexer. Exposed for tests.
func (ws *WebServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", ws.handleRoot)
	r.Post("/comment", ws.handleComment)
	r.Get("/status", ws.handleStatus)
	return r
}

// Start listens on the configured address and serves in the background.
func (ws *WebServer) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.isRunning {
		return fmt.Errorf("web server already running")
	}

	ln, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ws.addr, err)
	}

	ws.listener = ln
	ws.server = &http.Server{
		Handler:      ws.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ws.isRunning = true
	ws.started = time.Now()

	go func() {
		log.Printf("Starting comment server on %s", ln.Addr())
		if err := ws.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Comment server error: %v", err)
			ws.mu.Lock()
			ws.isRunning = false
			ws.mu.Unlock()
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (ws *WebServer) Stop() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown comment server: %w", err)
	}

	ws.isRunning = false
	log.Println("Comment server stopped")
	return nil
}

// running returns whether the server is currently running
func (ws *WebServer) running() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.isRunning
}

// URL returns the address viewers should open. Empty before Start.
func (ws *WebServer) URL() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	if ws.listener == nil {
		return ""
	}
	return "http://" + ws.listener.Addr().String()
}

// ShareURL is the URL to hand to viewers. A wildcard listen address is
// replaced with the first non-loopback IPv4 address of this machine.
func (ws *WebServer) ShareURL() string {
	ws.mu.RLock()
	ln := ws.listener
	ws.mu.RUnlock()
	if ln == nil {
		return ""
	}

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return "http://" + ln.Addr().String()
	}
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = lanIP()
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(addr.Port)))
}

// QRCode encodes ShareURL as a PNG of the given size in pixels.
func (ws *WebServer) QRCode(size int) ([]byte, error) {
	url := ws.ShareURL()
	if url == "" {
		return nil, fmt.Errorf("comment server not started")
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	log.Printf("QR code generated for: %s", url)
	return png, nil
}

func lanIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
