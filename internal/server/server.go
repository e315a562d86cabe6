package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"notewire/internal/agent"
	"notewire/internal/ingest"
	"notewire/internal/logging"
)

// notValidAgent is returned verbatim when a request names an unknown agent.
const notValidAgent = "not a valid agent"

// Options configures a Server.
type Options struct {
	// Addr is the listen address, host:port.
	Addr string

	// Registry holds the addressable agents.
	Registry *agent.Registry

	// Router suggests an agent after a document sync. Optional; when nil
	// syncs answer "success".
	Router *agent.RouterAgent

	// Ingestor handles document sync requests.
	Ingestor *ingest.Ingestor

	// SuggestOnIngest makes document syncs answer with the router's
	// suggested agent instead of "success".
	SuggestOnIngest bool

	Logger *logging.Logger
}

// Server accepts TCP connections and serves the envelope protocol. Each
// connection gets its own goroutine and its own generated session id, so
// conversational continuity follows the connection unless the client pins
// an explicit session.
type Server struct {
	opts     Options
	log      *logging.Logger
	listener net.Listener

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

// New creates a server. Call Serve to start accepting.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Ingestor == nil {
		return nil, fmt.Errorf("ingestor is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Server{
		opts:  opts,
		log:   opts.Logger.Sub("server"),
		conns: make(map[net.Conn]struct{}),
	}, nil
}

// Listen binds the listen address. Split from Serve so callers can learn
// the bound address before blocking, which matters when the port is 0.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	s.listener = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Addr returns the bound listen address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the context is cancelled or Shutdown is
// called. Each connection is handled in its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, closes all open connections, and waits for
// in-flight handlers to drain.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("shut down")
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

// handleConn serves frames from one connection until it closes. Malformed
// frames are logged and skipped without answering; the connection stays
// open so one bad frame cannot kill an otherwise healthy client.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	sessionID := uuid.NewString()
	log := s.log.Sub("conn")
	log.Debug().Str("remote", conn.RemoteAddr().String()).Str("session", sessionID).Msg("connected")

	reader := bufio.NewReader(conn)
	for {
		env, err := ReadEnvelope(reader)
		if err != nil {
			if isDisconnect(err) {
				log.Debug().Str("session", sessionID).Msg("disconnected")
				return
			}
			log.Warn().Err(err).Str("session", sessionID).Msg("dropping malformed frame")
			continue
		}
		if err := env.Validate(); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("dropping invalid frame")
			continue
		}

		resp := s.dispatch(ctx, sessionID, env)
		if err := WriteEnvelope(conn, resp); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("failed to write response")
			return
		}
	}
}

// dispatch runs one request and builds the response frame. The response
// mirrors the request's type and id; only data differs.
func (s *Server) dispatch(ctx context.Context, sessionID string, env Envelope) Envelope {
	if env.Session != "" {
		sessionID = env.Session
	}

	resp := Envelope{Type: env.Type, ID: env.ID}
	switch env.Type {
	case TypeAgentRequest:
		resp.Data = s.invokeAgent(ctx, sessionID, env.ID, env.Data)
	case TypeDocumentSync:
		resp.Data = s.syncDocument(ctx, env.ID, env.Data)
	}
	return resp
}

func (s *Server) invokeAgent(ctx context.Context, sessionID, name, input string) string {
	a, ok := s.opts.Registry.Lookup(name)
	if !ok {
		s.log.Warn().Str("agent", name).Msg("request for unknown agent")
		return notValidAgent
	}

	out, err := a.Action(ctx, sessionID, input)
	if err != nil {
		s.log.Error().Err(err).Str("agent", name).Str("session", sessionID).Msg("agent failed")
		return fmt.Sprintf("agent error: %v", err)
	}
	return out
}

func (s *Server) syncDocument(ctx context.Context, docID, text string) string {
	if err := s.opts.Ingestor.Upsert(ctx, docID, text); err != nil {
		s.log.Error().Err(err).Str("doc_id", docID).Msg("ingest failed")
		return fmt.Sprintf("ingest error: %v", err)
	}
	s.log.Info().Str("doc_id", docID).Msg("document synced")

	if s.opts.SuggestOnIngest && s.opts.Router != nil {
		chosen, err := s.opts.Router.Choose(ctx, text)
		if err != nil {
			s.log.Warn().Err(err).Str("doc_id", docID).Msg("agent suggestion failed")
			return "success"
		}
		return chosen
	}
	return "success"
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
