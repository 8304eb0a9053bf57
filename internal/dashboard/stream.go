package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/JaimeStill/scrapmetrics/pkg/handlers"
)

// Stream message types.
const (
	MessageAccepted = "accepted"
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

const writeTimeout = 15 * time.Second

// StreamRequest is a client message on the stream.
type StreamRequest struct {
	Period PeriodRequest `json:"period"`
}

// StreamMessage is a server message on the stream. Generation is zero for
// errors that precede a submission.
type StreamMessage struct {
	Type       string `json:"type"`
	Generation uint64 `json:"generation"`
	Data       any    `json:"data,omitempty"`
}

// Stream upgrades to a websocket. Each client message submits a period to
// a per-connection Refresher and is acknowledged with its generation;
// snapshots follow only for the newest generation.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn("stream upgrade failed", "error", err)
		return
	}
	defer ws.CloseNow()

	ctx := r.Context()
	refresher := h.sys.Refresher(ctx)

	written := make(chan struct{})
	go func() {
		defer close(written)
		for res := range refresher.Results() {
			msg := StreamMessage{Type: MessageSnapshot, Generation: res.Generation, Data: res.Snapshot}
			if res.Err != nil {
				msg = errorMessage(res.Generation, res.Err)
			}
			if err := h.send(ctx, ws, msg); err != nil {
				h.logger.Debug("stream write failed", "error", err)
				return
			}
		}
	}()

	h.receive(ctx, ws, refresher)

	refresher.Close()
	<-written
	ws.Close(websocket.StatusNormalClosure, "stream ended")
}

func (h *Handler) receive(ctx context.Context, ws *websocket.Conn, refresher *Refresher) {
	for {
		var req StreamRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				h.logger.Debug("stream read ended", "error", err)
			}
			return
		}

		msg := StreamMessage{Type: MessageAccepted}
		gen, err := h.submit(refresher, req.Period)
		if err != nil {
			msg = errorMessage(0, err)
		}
		msg.Generation = gen

		if err := h.send(ctx, ws, msg); err != nil {
			return
		}
	}
}

func (h *Handler) submit(refresher *Refresher, p PeriodRequest) (uint64, error) {
	spec, err := p.Spec()
	if err != nil {
		return 0, err
	}
	ref, err := p.RefTime(h.now())
	if err != nil {
		return 0, err
	}
	return refresher.Submit(spec, ref)
}

func (h *Handler) send(ctx context.Context, ws *websocket.Conn, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}

func errorMessage(gen uint64, err error) StreamMessage {
	return StreamMessage{
		Type:       MessageError,
		Generation: gen,
		Data:       handlers.ErrorResponse{Error: err.Error()},
	}
}
