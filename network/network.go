// Package network owns the websocket endpoint: it upgrades connections,
// decodes envelopes from the read loop into session commands, and
// adapts the socket into the session.Conn writer.
package network

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shreyapandey07/game/protocol"
	"github.com/shreyapandey07/game/session"
)

const (
	readLimit     = 1 << 20 // 1MB
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn serializes writes: the session goroutine and the ping loop
// both write to the socket, and gorilla allows one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

type Server struct {
	manager *session.Manager
}

// NewMux wires the websocket endpoint, the session list API, and the
// static client page.
func NewMux(m *session.Manager, staticDir string) *http.ServeMux {
	srv := &Server{manager: m}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.manager.List()); err != nil {
		log.Printf("sessions list encode: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	c := &wsConn{conn: conn}
	defer c.Close()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// First message must be a hello.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		log.Println("read hello:", err)
		return
	}
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil || env.T != protocol.MsgHello {
		log.Printf("expected hello, got %q (err %v)", env.T, err)
		return
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		log.Println("decode hello:", err)
		return
	}

	sess := s.manager.Create(hello.Name)

	// Welcome goes out before Join so the client sees it ahead of the
	// first state snapshot.
	if b, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{SessionID: sess.ID, V: protocol.Version}); err == nil {
		_ = c.Send(b)
	}

	reply := make(chan session.JoinResult, 1)
	sess.Inbox <- session.Join{Conn: c, Reply: reply}
	<-reply
	defer func() {
		sess.Inbox <- session.Leave{}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(raw)
		if err != nil {
			log.Println("decode:", err)
			continue
		}
		switch env.T {
		case protocol.MsgMotion:
			m, err := protocol.DecodePayload[protocol.Motion](env)
			if err != nil {
				log.Println("decode motion:", err)
				continue
			}
			sess.Inbox <- session.Motion{Accel: m.Accel}
		case protocol.MsgDrop:
			d, err := protocol.DecodePayload[protocol.Drop](env)
			if err != nil {
				log.Println("decode drop:", err)
				continue
			}
			sess.Inbox <- session.Drop{PartID: d.PartID, TargetIndex: d.TargetIndex}
		case protocol.MsgReset:
			sess.Inbox <- session.Reset{}
		default:
			log.Printf("unknown message type %q", env.T)
		}
	}
}
