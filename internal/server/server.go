package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pvcnt/memkvd/internal/store"
)

// acceptBackoff is how long Serve waits after running out of file descriptors
const acceptBackoff = time.Second

// Server accepts connections on a unix socket and serves each one with a
// single request against the store
type Server struct {
	cfg     Config
	kv      store.Store
	handler *handler
	logger  hclog.Logger

	// Concurrency limit, nil when unlimited
	sem chan struct{}

	listener net.Listener
	conns    map[net.Conn]struct{}
	mu       sync.Mutex
	wg       sync.WaitGroup

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates a new server around kv. The store is owned by the server
// from then on and closed by Shutdown.
func NewServer(cfg Config, kv store.Store, logger hclog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		kv:  kv,
		handler: &handler{
			kv:     kv,
			logger: logger.Named("handler"),
		},
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
		shutdownCh: make(chan struct{}),
	}
	if cfg.MaxConns > 0 {
		s.sem = make(chan struct{}, cfg.MaxConns)
	}
	return s
}

// Listen binds the configured unix socket
func (s *Server) Listen() (net.Listener, error) {
	lis, err := net.Listen("unix", s.cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.Socket, err)
	}
	return lis, nil
}

// Serve accepts connections on lis until Shutdown is called. Each connection
// is handled in its own goroutine; the store serializes the operations.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		_ = lis.Close()
		return nil
	}
	s.listener = lis
	s.mu.Unlock()

	s.logger.Info("serving", "socket", lis.Addr().String(), "engine", s.cfg.Engine)

	for {
		if !s.acquire() {
			return nil
		}

		conn, err := lis.Accept()
		if err != nil {
			s.release()
			select {
			case <-s.shutdownCh:
				return nil
			default:
			}
			if errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) {
				s.logger.Warn("out of file descriptors, backing off", "error", err)
				time.Sleep(acceptBackoff)
				continue
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		if !s.track(conn) {
			s.release()
			conn.Close()
			return nil
		}

		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.untrack(conn)
			s.handler.serveConn(conn)
		}()
	}
}

// acquire takes a connection slot, blocking while max_conns are in flight
func (s *Server) acquire() bool {
	if s.sem == nil {
		return true
	}
	select {
	case s.sem <- struct{}{}:
		return true
	case <-s.shutdownCh:
		return false
	}
}

func (s *Server) release() {
	if s.sem != nil {
		<-s.sem
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
}

// Shutdown stops accepting connections, closes in-flight ones, waits for
// their handlers, closes the store and removes the socket file
func (s *Server) Shutdown() error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down server")

		s.mu.Lock()
		s.shutdown = true
		close(s.shutdownCh)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Error("error closing listener", "error", err)
			}
		}
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		s.wg.Wait()

		if err := s.kv.Close(); err != nil {
			shutdownErr = fmt.Errorf("failed to close store: %w", err)
		}
		if _, err := RemoveSocket(s.cfg.Socket); err != nil {
			s.logger.Error("error removing socket", "socket", s.cfg.Socket, "error", err)
			if shutdownErr == nil {
				shutdownErr = err
			}
		}

		s.logger.Info("server shutdown complete")
	})

	return shutdownErr
}

// RemoveSocket removes a socket file left at path. It reports whether a file
// was removed; a missing file is not an error.
func RemoveSocket(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return true, nil
}
