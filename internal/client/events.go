package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// ErrConnectionLost is returned by Subscribe when an established push
// connection drops.
var ErrConnectionLost = errors.New("event connection lost")

// Subscribe connects to the server push channel and delivers each event to
// fn until ctx is cancelled or the connection drops. Malformed messages are
// skipped.
func (c *HTTPClient) Subscribe(ctx context.Context, fn func(models.Event)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrConnectionLost, err)
		}
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		fn(ev)
	}
}
