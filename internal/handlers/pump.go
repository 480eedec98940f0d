// internal/handlers/pump.go
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// outboundBuffer bounds each connection's outbound frame queue. A full
	// queue applies backpressure to producers rather than dropping frames.
	outboundBuffer = 30
	writeTimeout   = 5 * time.Second
)

// outFrame is one unit of outbound traffic: a JSON payload, a ping marker,
// or a flush acknowledgement.
type outFrame struct {
	ping bool
	data []byte
	ack  chan struct{}
}

// connWriter funnels every outbound write for one connection through a
// single goroutine, so independent producers (game events, presence relay,
// heartbeats) can interleave whole messages without tearing them.
type connWriter struct {
	log     *logrus.Logger
	frames  chan outFrame
	stopped chan struct{}
}

func newConnWriter(log *logrus.Logger) *connWriter {
	return &connWriter{
		log:     log,
		frames:  make(chan outFrame, outboundBuffer),
		stopped: make(chan struct{}),
	}
}

// send queues a JSON-encoded message. Best effort: it waits for queue
// space but gives up silently once the pump has stopped. A failure to
// deliver is an implicit peer-gone signal handled by the surrounding
// loops, never an error for the caller.
func (w *connWriter) send(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		w.log.Errorf("failed to marshal outbound message: %v", err)
		return
	}
	w.enqueue(outFrame{data: data})
}

// ping queues a liveness probe.
func (w *connWriter) ping() {
	w.enqueue(outFrame{ping: true})
}

func (w *connWriter) enqueue(fr outFrame) {
	select {
	case w.frames <- fr:
	case <-w.stopped:
	}
}

// flush blocks until every frame queued before it has been written, or
// until the pump dies trying.
func (w *connWriter) flush() {
	ack := make(chan struct{})
	select {
	case w.frames <- outFrame{ack: ack}:
	case <-w.stopped:
		return
	}
	select {
	case <-ack:
	case <-w.stopped:
	}
}

// run services the frame queue until ctx ends or a write fails. Write
// failures are not escalated; the read side observes the broken connection
// and tears the session down.
func (w *connWriter) run(ctx context.Context, c *websocket.Conn) {
	defer close(w.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case fr := <-w.frames:
			if fr.ack != nil {
				close(fr.ack)
				continue
			}
			// Writes get their own deadline so a queued frame can still go
			// out while the session is unwinding.
			writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			var err error
			if fr.ping {
				err = c.Ping(writeCtx)
			} else {
				err = c.Write(writeCtx, websocket.MessageText, fr.data)
			}
			cancel()
			if err != nil {
				w.log.Debugf("write pump stopping: %v", err)
				return
			}
		}
	}
}
