// Package push maintains the live websocket subscription that feeds
// the reconcilers with newly created or changed entities.
package push

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nhle/auction-console/internal/alert"
)

// Options tunes a Listener.
type Options struct {
	// MaxRetries bounds reconnect attempts after an unexpected
	// disconnect. Defaults to 5.
	MaxRetries int

	// RetryDelay is the fixed wait between attempts. Defaults to 1s.
	RetryDelay time.Duration

	// Notifier, when set, receives an out-of-band alert for each
	// accepted notification event.
	Notifier alert.Notifier

	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Listener owns one websocket connection and its subscriptions. It is
// an explicit handle: whoever dials it closes it. Leaving a listener
// open past its feed's lifetime double-delivers events to the next
// mount, so Close on teardown is a correctness requirement, not
// hygiene.
type Listener struct {
	url        string
	channels   []string
	sessionID  string
	maxRetries int
	retryDelay time.Duration
	notifier   alert.Notifier
	log        zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	msgs      chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the push endpoint and joins the named channels. The
// returned Listener delivers decoded events through WaitForEvent until
// Close is called.
func Dial(url string, channels []string, opts Options) (*Listener, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	l := &Listener{
		url:        url,
		channels:   channels,
		sessionID:  uuid.New().String(),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		notifier:   opts.Notifier,
		log:        logger,
		msgs:       make(chan tea.Msg, 64),
		done:       make(chan struct{}),
	}

	conn, err := l.connect()
	if err != nil {
		return nil, err
	}
	l.conn = conn

	go l.readLoop(conn)
	return l, nil
}

// connect dials the endpoint and sends one subscribe frame per channel.
func (l *Listener) connect() (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", l.url, err)
	}

	for _, ch := range l.channels {
		frame := subscribeFrame{
			Event:     "subscribe",
			Channel:   ch,
			SessionID: l.sessionID,
		}
		if err := conn.WriteJSON(frame); err != nil {
			conn.Close()
			return nil, fmt.Errorf("subscribing to %s: %w", ch, err)
		}
	}

	l.log.Info().Str("url", l.url).Strs("channels", l.channels).
		Msg("push connection established")
	return conn, nil
}

// readLoop decodes inbound frames until the connection drops or the
// listener is closed. On an unexpected drop it runs the bounded
// reconnect policy; exhaustion emits a StaleMsg and ends the loop.
func (l *Listener) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case <-l.done:
				return
			default:
			}

			next, rerr := l.reconnect()
			if rerr != nil {
				l.log.Warn().Err(err).Msg("push connection lost for good")
				l.deliver(StaleMsg{Err: rerr})
				return
			}
			conn = next
			continue
		}

		msg, err := decode(env)
		if err != nil {
			// Malformed payloads are dropped, never crash the loop.
			l.log.Debug().Err(err).Str("event", env.Event).
				Msg("dropping malformed push payload")
			continue
		}
		if msg == nil {
			l.log.Debug().Str("event", env.Event).
				Msg("ignoring unknown push event type")
			continue
		}

		if n, ok := msg.(NotificationMsg); ok && l.notifier != nil {
			l.notifier.Notify("New notification", n.Notification.Message)
		}

		l.deliver(msg)
	}
}

// reconnect retries the connection a bounded number of times with a
// fixed delay. Re-subscribing to every channel is safe: joins are
// idempotent on the server.
func (l *Listener) reconnect() (*websocket.Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		select {
		case <-l.done:
			return nil, fmt.Errorf("listener closed")
		case <-time.After(l.retryDelay):
		}

		conn, err := l.connect()
		if err != nil {
			lastErr = err
			l.log.Warn().Err(err).Int("attempt", attempt).
				Msg("push reconnect failed")
			continue
		}

		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()
		return conn, nil
	}

	return nil, fmt.Errorf("reconnect attempts (%d) exhausted: %w", l.maxRetries, lastErr)
}

// deliver hands a message to the UI without outliving Close.
func (l *Listener) deliver(msg tea.Msg) {
	select {
	case l.msgs <- msg:
	case <-l.done:
	}
}

// WaitForEvent returns a tea.Cmd that blocks for the next push message.
// Call it again after handling each message to keep listening.
func (l *Listener) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-l.msgs:
			return msg
		case <-l.done:
			return nil
		}
	}
}

// Close tears the connection down. Idempotent; safe from any goroutine.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		if l.conn != nil {
			l.conn.Close()
		}
		l.mu.Unlock()
		l.log.Info().Msg("push connection closed")
	})
}
