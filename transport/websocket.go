package transport

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"skat.com/server/protocol"
)

// WebSocket carries one package per text message.
type WebSocket struct {
	conn   *websocket.Conn
	remote string
}

func NewWebSocket(conn *websocket.Conn, remote string) *WebSocket {
	conn.SetReadLimit(protocol.MaxFrameSize)
	return &WebSocket{conn: conn, remote: remote}
}

func AcceptWebSocket(w http.ResponseWriter, r *http.Request) (*WebSocket, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return nil, errors.Wrap(err, "accepting websocket")
	}
	return NewWebSocket(c, r.RemoteAddr), nil
}

func DialWebSocket(ctx context.Context, url string) (*WebSocket, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	return NewWebSocket(c, url), nil
}

func (w *WebSocket) Send(ctx context.Context, p *protocol.Package) error {
	data, err := protocol.Marshal(p)
	if err != nil {
		return err
	}
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return errors.Wrapf(err, "sending %s to %s", p.Type, w.remote)
	}
	return nil
}

func (w *WebSocket) Receive(ctx context.Context) (*protocol.Package, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "receiving from %s", w.remote)
	}
	return protocol.Unmarshal(data)
}

func (w *WebSocket) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (w *WebSocket) RemoteAddr() string {
	return w.remote
}
