package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Frame is the envelope pushed over a ticket websocket.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub runs the websocket push server. Each connection is scoped to
// exactly one ticket id; viewing another ticket means a new connection,
// and closing the socket tears down its Redis subscription.
type Hub struct {
	addr       string
	logger     *zap.Logger
	redis      *redis.Client
	tokens     *auth.TokenManager
	profiles   repository.ProfileRepository
	loader     ViewLoader
	reconciler *Reconciler

	server   *http.Server
	upgrader websocket.Upgrader

	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates the hub.
func NewHub(addr string, client *redis.Client, tokens *auth.TokenManager, profiles repository.ProfileRepository, loader ViewLoader, logger *zap.Logger) *Hub {
	return &Hub{
		addr:       addr,
		logger:     logger,
		redis:      client,
		tokens:     tokens,
		profiles:   profiles,
		loader:     loader,
		reconciler: NewReconciler(loader),
		conns:      make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start begins serving websocket subscriptions.
func (h *Hub) Start(ctx context.Context) {
	h.ctx, h.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/tickets/", h.handleTicketSocket)

	h.server = &http.Server{Addr: h.addr, Handler: mux}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.logger.Info("realtime server started", zap.String("addr", h.addr))
		if err := h.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("realtime server", zap.Error(err))
		}
	}()
}

// Stop closes all connections and shuts the server down.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.connMu.Lock()
	for conn := range h.conns {
		_ = conn.Close()
	}
	h.connMu.Unlock()
	if h.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.server.Shutdown(shutdownCtx)
	}
	h.wg.Wait()
}

func (h *Hub) handleTicketSocket(w http.ResponseWriter, r *http.Request) {
	// Refuse new sockets once Stop has begun so the serve goroutine is
	// never added after the shutdown wait started.
	if h.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	ticketID := strings.TrimPrefix(r.URL.Path, "/ws/tickets/")
	if ticketID == "" || strings.Contains(ticketID, "/") {
		http.NotFound(w, r)
		return
	}

	viewer, err := h.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Resolve the initial view before upgrading so authorization failures
	// surface as plain HTTP statuses.
	view, err := h.loader.LoadTicketView(r.Context(), ticketID, viewer)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		http.Error(w, domainErr.Message, domainErr.HTTPStatus)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.track(conn)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.untrack(conn)
		defer conn.Close()
		h.serve(conn, ticketID, viewer, view)
	}()
}

func (h *Hub) authenticate(r *http.Request) (*domain.Profile, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil, errors.New("missing token")
	}
	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	profile, err := h.profiles.GetByID(r.Context(), claims.ProfileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("profile not found")
		}
		return nil, err
	}
	return profile, nil
}

func (h *Hub) track(conn *websocket.Conn) {
	h.connMu.Lock()
	h.conns[conn] = struct{}{}
	h.connMu.Unlock()
}

func (h *Hub) untrack(conn *websocket.Conn) {
	h.connMu.Lock()
	delete(h.conns, conn)
	h.connMu.Unlock()
}

// serve pumps change events from the ticket's Redis channel into the
// websocket until either side goes away. A dropped Redis subscription is
// retried with exponential backoff while the client keeps its stale
// view; the connection frames only inform, nothing acts on them.
func (h *Hub) serve(conn *websocket.Conn, ticketID string, viewer *domain.Profile, view *TicketView) {
	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	// Reader exists only to observe the close handshake.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeFrame(conn, Frame{Type: "view", Data: view}); err != nil {
		return
	}

	retry := backoff.NewExponentialBackOff()
	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := h.redis.Subscribe(ctx, ChannelForTicket(ticketID))
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			_ = h.writeFrame(conn, connectionFrame("degraded"))
			select {
			case <-time.After(retry.NextBackOff()):
			case <-ctx.Done():
				return
			}
			continue
		}
		retry.Reset()
		if err := h.writeFrame(conn, connectionFrame("connected")); err != nil {
			_ = pubsub.Close()
			return
		}

		if err := h.pump(ctx, conn, pubsub, viewer, view); err != nil {
			_ = pubsub.Close()
			return
		}
		// Channel closed underneath us; resubscribe.
		_ = pubsub.Close()
		_ = h.writeFrame(conn, connectionFrame("degraded"))
	}
}

func (h *Hub) pump(ctx context.Context, conn *websocket.Conn, pubsub *redis.PubSub, viewer *domain.Profile, view *TicketView) error {
	ch := pubsub.Channel()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				h.logger.Warn("malformed change event", zap.Error(err))
				continue
			}
			if err := h.reconciler.Apply(ctx, view, viewer, change); err != nil {
				h.logger.Warn("apply change event",
					zap.String("ticket_id", view.ID), zap.Error(err))
				continue
			}
			if err := h.writeFrame(conn, Frame{Type: "view", Data: view}); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) writeFrame(conn *websocket.Conn, frame Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func connectionFrame(status string) Frame {
	return Frame{Type: "connection", Data: map[string]string{"status": status}}
}
