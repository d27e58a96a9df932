package net

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Viewer follows an editor's hub.
type Viewer struct {
	conn *websocket.Conn
}

// Dial connects to the hub named by a share link.
func Dial(ctx context.Context, link string) (*Viewer, error) {
	addr, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	return DialURL(ctx, "ws://"+addr+PreviewPath)
}

// DialURL connects to a hub at a websocket URL.
func DialURL(ctx context.Context, url string) (*Viewer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &Viewer{conn: conn}, nil
}

// Next blocks until the hub sends the next message.
func (v *Viewer) Next() (Message, error) {
	var m Message
	if err := v.conn.ReadJSON(&m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// LocalAddr identifies this viewer to the hub.
func (v *Viewer) LocalAddr() string {
	return v.conn.LocalAddr().String()
}

func (v *Viewer) Close() error {
	return v.conn.Close()
}
