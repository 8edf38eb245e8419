package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/pvcnt/memkvd/internal/store"
	"github.com/pvcnt/memkvd/internal/transport"
)

// handler serves one request per connection against a shared store
type handler struct {
	kv     store.Store
	logger hclog.Logger
}

// serveConn reads a single request from conn, dispatches it and writes the
// text response. The connection is always closed on return.
func (h *handler) serveConn(conn net.Conn) {
	defer conn.Close()

	req, err := transport.ReadRequest(conn)
	if err != nil {
		// Nothing is sent back: the framing state of the stream is unknown.
		if errors.Is(err, transport.ErrNoRequest) {
			h.logger.Debug("client disconnected before sending a request")
		} else {
			h.logger.Warn("failed to read request", "error", err)
		}
		return
	}

	w := bufio.NewWriter(conn)
	h.dispatch(w, req)
	if err := w.Flush(); err != nil {
		h.logger.Warn("failed to write response", "op", string(req.Op), "error", fmt.Errorf("%w: %w", transport.ErrWriteFailed, err))
	}
}

// dispatch runs req against the store and writes the response to w
func (h *handler) dispatch(w *bufio.Writer, req *transport.Request) {
	switch req.Op {
	case transport.OpGet:
		value, found := h.kv.Get(req.Key)
		if !found {
			writeNotFound(w, req.Key)
			return
		}
		w.Write(value)
		w.WriteByte('\n')

	case transport.OpSet:
		added, err := h.kv.Set(req.Key, req.Value)
		if err != nil {
			h.logger.Warn("failed to set key", "key", string(req.Key), "error", err)
			writeLine(w, "Setting ", req.Key, ": "+err.Error())
			return
		}
		if added {
			h.logger.Info("added key", "key", string(req.Key))
			writeLine(w, "Added ", req.Key, "")
		} else {
			h.logger.Info("updated key", "key", string(req.Key))
			writeLine(w, "Updated ", req.Key, "")
		}

	case transport.OpDelete:
		if !h.kv.Delete(req.Key) {
			writeNotFound(w, req.Key)
			return
		}
		h.logger.Info("deleted key", "key", string(req.Key))
		writeLine(w, "Deleted ", req.Key, "")

	case transport.OpList:
		for _, key := range h.kv.Keys() {
			w.Write(key)
			w.WriteByte('\n')
		}

	default:
		h.logger.Debug("unknown operation", "op", req.Op)
		w.WriteString("Unknown operation ")
		w.WriteByte(req.Op)
		w.WriteString(".\n")
	}
}

func writeNotFound(w *bufio.Writer, key []byte) {
	writeLine(w, "__Key ", key, " not found__")
}

// writeLine writes prefix, the raw key bytes and suffix followed by a newline
func writeLine(w *bufio.Writer, prefix string, key []byte, suffix string) {
	w.WriteString(prefix)
	w.Write(key)
	w.WriteString(suffix)
	w.WriteByte('\n')
}
