package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/engine"
	"github.com/chordnova/chordnova/internal/logging"
	"github.com/chordnova/chordnova/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// DefaultPongWait is the time allowed to read the next pong from the peer
	DefaultPongWait = 60 * time.Second
)

// handleWebSocket upgrades the request and serves one engine session
func (s *Server) handleWebSocket(c *gin.Context) {
	remoteAddr := c.Request.RemoteAddr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := s.loader(ctx)
	if err != nil {
		logging.Error("Failed to create engine session",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer eng.Close()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.trackConn(remoteAddr, conn)
	defer s.untrackConn(remoteAddr)

	sess := &session{
		conn:       conn,
		remoteAddr: remoteAddr,
		engine:     eng,
		pongWait:   s.config.PongWait,
		pingPeriod: s.config.PingPeriod,
	}
	sess.serve(ctx)
}

// session is one client connection with its own engine
type session struct {
	conn       *websocket.Conn
	remoteAddr string
	engine     engine.Engine
	pongWait   time.Duration
	pingPeriod time.Duration

	writeMu sync.Mutex
}

func (s *session) serve(ctx context.Context) {
	logging.LogConnection(s.remoteAddr, "websocket_upgraded")
	defer func() {
		_ = s.conn.Close()
		logging.LogConnection(s.remoteAddr, "websocket_closed")
	}()

	s.conn.SetReadLimit(protocol.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pingLoop(ctx)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed by client", zap.String("remote_addr", s.remoteAddr))
			} else {
				logging.Info("Connection closed or error reading message",
					zap.String("remote_addr", s.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		logging.LogWebSocketMessage(s.remoteAddr, "recv", msgType, data)

		if msgType != websocket.TextMessage {
			s.reply(protocol.ErrorResponse(nil, errors.New("binary frames are not supported")))
			continue
		}

		// A request may run for a long time; keep the peer's pongs from
		// timing out the read side meanwhile.
		_ = s.conn.SetReadDeadline(time.Time{})
		resp := protocol.HandleMessage(ctx, s.engine, s.remoteAddr, data)
		_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))

		if err := s.reply(resp); err != nil {
			logging.Error("Failed to write response",
				zap.String("remote_addr", s.remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

func (s *session) reply(resp *protocol.Response) error {
	data, err := protocol.Encode(resp)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	logging.LogWebSocketMessage(s.remoteAddr, "send", websocket.TextMessage, data)
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				logging.Debug("Ping failed", zap.String("remote_addr", s.remoteAddr), zap.Error(err))
				return
			}
		}
	}
}
