package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"ProductCanvas/internal/state"

	"github.com/gorilla/websocket"
)

const (
	// PreviewPath is where the hub accepts viewer connections.
	PreviewPath = "/preview"

	MessageScene = "scene"

	writeWait = 10 * time.Second
)

// Message is what the hub sends to viewers. Every scene message carries
// the whole document; Version only grows within a session.
type Message struct {
	Type     string          `json:"type"`
	Session  string          `json:"session"`
	Version  uint64          `json:"version"`
	Document *state.Document `json:"document,omitempty"`
}

// Peer is one connected viewer. send holds at most one pending message;
// a newer scene replaces an unsent older one.
type Peer struct {
	conn *websocket.Conn
	send chan Message
}

func (p *Peer) offer(m Message) {
	for {
		select {
		case p.send <- m:
			return
		default:
		}
		select {
		case <-p.send:
		default:
		}
	}
}

// Hub fans scene updates out to read-only viewers. Data flows one way:
// viewers never edit.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	peers   map[string]*Peer
	last    *Message
	version uint64
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		peers: make(map[string]*Peer),
	}
}

// Publish sends doc to every viewer and keeps it for viewers that join
// later.
func (h *Hub) Publish(session string, doc state.Document) {
	h.mu.Lock()
	h.version++
	m := Message{Type: MessageScene, Session: session, Version: h.version, Document: &doc}
	h.last = &m
	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		p.offer(m)
	}
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	addr := p.conn.RemoteAddr().String()
	h.peers[addr] = p
	if h.last != nil {
		p.offer(*h.last)
	}
	log.Printf("[PREVIEW] Viewer connected from %s", addr)
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	addr := p.conn.RemoteAddr().String()
	if h.peers[addr] == p {
		delete(h.peers, addr)
		log.Printf("[PREVIEW] Viewer %s disconnected", addr)
	}
}

// ServeHTTP upgrades a viewer connection and streams scene messages to it
// until either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[PREVIEW] Upgrade failed: %v", err)
		return
	}
	p := &Peer{conn: conn, send: make(chan Message, 1)}
	h.add(p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Viewers send nothing; reading only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.remove(p)
		conn.Close()
	}()
	for {
		select {
		case <-done:
			return
		case m := <-p.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				log.Printf("[PREVIEW] Write to %s failed: %v", conn.RemoteAddr(), err)
				return
			}
		}
	}
}

// ListenAndServe serves the hub on port until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle(PreviewPath, h)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Printf("[PREVIEW] Hub listening on port %d", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview hub: %w", err)
	}
	return nil
}
