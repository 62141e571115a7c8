package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Consult/internal/adapters/auth"
	"github.com/dkeye/Consult/internal/app/orch"
	"github.com/dkeye/Consult/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

const (
	writeWait          = 5 * time.Second
	defaultPingPeriod  = 54 * time.Second
	defaultReadLimit   = 64 * 1024
	defaultSendQueue   = 64
	defaultMaxTextSize = 4096
)

// Options tune the per-connection transport.
type Options struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	SendQueue     int
	MaxMessageLen int
	EventsPerSec  float64
	EventBurst    int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = defaultPingPeriod
	}
	if o.SendQueue <= 0 {
		o.SendQueue = defaultSendQueue
	}
	if o.MaxMessageLen <= 0 {
		o.MaxMessageLen = defaultMaxTextSize
	}
	return o
}

// SignalWSController speaks the room protocol over WebSocket. Each connection
// is handled by its own read loop, so events from one connection are processed
// in order while different connections proceed independently.
type SignalWSController struct {
	Orch     *orch.Orchestrator
	Verifier *auth.Verifier
	opts     Options

	wg sync.WaitGroup
}

func NewSignalWSController(o *orch.Orchestrator, v *auth.Verifier, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		Verifier: v,
		opts:     opts.withDefaults(),
	}
}

// Wait blocks until every connection handler has finished.
func (ctl *SignalWSController) Wait() {
	ctl.wg.Wait()
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops the write pump. The pump closes the socket on its way out.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", token).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendQueue),
	}
	ctx, cancel := context.WithCancel(ctx)

	ctl.wg.Add(2)
	go func() {
		defer ctl.wg.Done()
		ctl.writePump(ctx, conn)
	}()
	go func() {
		defer ctl.wg.Done()
		defer cancel()
		ctl.readPump(ctx, sid, token, conn)
	}()
}
