package push

import (
	"encoding/json"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/auction-console/internal/model"
)

// Event type discriminators emitted by the server. A new server event
// kind needs a matching case in decode; unknown kinds are dropped for
// forward compatibility, never guessed at from payload shape.
const (
	EventNotificationCreated = "notification.created"
	EventProfileCreated      = "profile.created"
	EventProfileUpdated      = "profile.updated"
)

// Envelope is the wire frame for every push message.
type Envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// subscribeFrame is the control message that joins a channel. Joining
// an already-joined channel is a server-side no-op.
type subscribeFrame struct {
	Event     string `json:"event"`
	Channel   string `json:"channel"`
	SessionID string `json:"session_id"`
}

// NotificationMsg carries a freshly pushed notification to the UI.
type NotificationMsg struct {
	Notification model.Notification
	Channel      string
}

// ProfileMsg carries a pushed seller-profile create or update.
type ProfileMsg struct {
	Profile model.ProfileRecord
	Created bool
	Channel string
}

// StaleMsg reports that the connection is gone and reconnection
// attempts are exhausted. The feed keeps its last known good state; a
// manual refresh dials again.
type StaleMsg struct {
	Err error
}

// decode maps an envelope to a typed message. It returns (nil, nil)
// for unknown event types and an error for malformed payloads; neither
// may crash the read loop.
func decode(env Envelope) (tea.Msg, error) {
	switch env.Event {
	case EventNotificationCreated:
		var n model.Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		if n.ID == "" {
			return nil, errors.New("notification event missing id")
		}
		if n.Channel == "" {
			n.Channel = env.Channel
		}
		return NotificationMsg{Notification: n, Channel: env.Channel}, nil

	case EventProfileCreated, EventProfileUpdated:
		var p model.ProfileRecord
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		if p.ID == "" {
			return nil, errors.New("profile event missing id")
		}
		return ProfileMsg{
			Profile: p,
			Created: env.Event == EventProfileCreated,
			Channel: env.Channel,
		}, nil

	default:
		return nil, nil
	}
}
