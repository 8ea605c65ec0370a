package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	drepo "MarketMind/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a QuoteStream backed by the broker's quote WebSocket.
// The feed pushes full quote frames per subscribed symbol.
type Stream struct {
	accessToken    string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// mu guards the connection fields and serializes writes. The ping loop
	// and the collector goroutine both touch the connection.
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	pingOnce  sync.Once
}

// NewStream creates a broker quote stream for the given symbols.
func NewStream(accessToken, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.QuoteStream {
	return &Stream{
		accessToken:    accessToken,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?access_token=%s", s.websocketURL, s.accessToken)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == 401 || resp.StatusCode == 403) {
			return fmt.Errorf("broker connect: %w", drepo.ErrUnauthorized)
		}
		return fmt.Errorf("broker connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Subscribe subscribes to full-quote mode for the configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("broker not connected")
	}
	msg := map[string]interface{}{
		"action":  "subscribe",
		"mode":    "quote",
		"symbols": s.symbols,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

type quoteFrame struct {
	Type string `json:"type"`
	Data []struct {
		Symbol        string  `json:"symbol"`
		LTP           float64 `json:"ltp"`
		Change        float64 `json:"change"`
		ChangePercent float64 `json:"change_percent"`
		Open          float64 `json:"open"`
		High          float64 `json:"high"`
		Low           float64 `json:"low"`
		PrevClose     float64 `json:"prev_close"`
		Volume        float64 `json:"volume"`
		Timestamp     int64   `json:"ts"` // ms
	} `json:"data"`
}

// Read streams quote snapshots and errors for the current connection. The
// returned channels close after a read error; call Read again on the
// replacement connection after Reconnect.
func (s *Stream) Read(ctx context.Context) (<-chan *models.MarketSnapshot, <-chan error) {
	quotes := make(chan *models.MarketSnapshot, 256)
	errs := make(chan error, 1)

	// One ping loop per stream, shared across reconnects.
	s.pingOnce.Do(func() {
		go s.pingLoop(ctx)
	})

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := s.current()
				if conn == nil {
					errs <- fmt.Errorf("broker conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("broker read: %w", err)
					return
				}
				var f quoteFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-quote frames
					continue
				}
				if f.Type != "quote" {
					continue
				}
				for _, d := range f.Data {
					snap := &models.MarketSnapshot{
						Symbol:        d.Symbol,
						LastPrice:     d.LTP,
						Change:        d.Change,
						ChangePercent: d.ChangePercent,
						Open:          d.Open,
						High:          d.High,
						Low:           d.Low,
						PrevClose:     d.PrevClose,
						Volume:        d.Volume,
						FetchedAt:     time.UnixMilli(d.Timestamp),
					}
					select {
					case quotes <- snap:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ping()
		}
	}
}

func (s *Stream) ping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.WriteMessage(websocket.PingMessage, nil)
	}
}

func (s *Stream) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.connected = false
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected reports connection state.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
