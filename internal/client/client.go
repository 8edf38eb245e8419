package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"

	"github.com/pvcnt/memkvd/internal/transport"
)

// Client sends requests to a memkvd server over its unix socket. Every
// request uses a fresh connection, which the server closes after responding.
type Client struct {
	socket string
	dialer net.Dialer
}

// New creates a new Client for the server listening at socket
func New(socket string) *Client {
	return &Client{socket: socket}
}

// Do sends req and copies the server's response to w until the server closes
// the connection
func (c *Client) Do(ctx context.Context, req *transport.Request, w io.Writer) error {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socket)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if err := transport.WriteRequest(conn, req); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		if err := uc.CloseWrite(); err != nil {
			return fmt.Errorf("failed to close write side: %w", err)
		}
	}

	if _, err := io.Copy(w, conn); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return nil
}

// Call sends req and returns the full response
func (c *Client) Call(ctx context.Context, req *transport.Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Do(ctx, req, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Get returns the server's response to a get request for key
func (c *Client) Get(ctx context.Context, key []byte) ([]byte, error) {
	return c.Call(ctx, &transport.Request{Op: transport.OpGet, Key: key})
}

// Set returns the server's response to a set request for key and value
func (c *Client) Set(ctx context.Context, key, value []byte) ([]byte, error) {
	return c.Call(ctx, &transport.Request{Op: transport.OpSet, Key: key, Value: value})
}

// Delete returns the server's response to a delete request for key
func (c *Client) Delete(ctx context.Context, key []byte) ([]byte, error) {
	return c.Call(ctx, &transport.Request{Op: transport.OpDelete, Key: key})
}

// List returns the server's response to a list request
func (c *Client) List(ctx context.Context) ([]byte, error) {
	return c.Call(ctx, &transport.Request{Op: transport.OpList})
}
