// Package taxreg provides the client/server core of the taxpayer registry
// application. It is designed to be decoupled from GUI implementations: the
// desktop front-end talks to the Client, the Server owns the listener,
// connection handling, command dispatch, and SQLite-backed persistence.
//
// The core functionality includes:
//   - A TCP server accepting concurrent connections, one goroutine per connection
//   - CRLF-delimited JSON message framing and a closed, typed command set
//   - A single process-wide store lock serializing all database access
//   - SQLite database storage for credentials and taxpayer records
//   - A persistent server log alongside standard error logging
//   - A one-request-per-connection client with structured transport error codes
package taxreg

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/taxreg/core"
	"github.com/tfkr-ae/taxreg/domain"
	"github.com/tfkr-ae/taxreg/listener"
	"github.com/tfkr-ae/taxreg/wire"
)

// Repository defines the methods consumed by the server to interact with the
// SQLite backend. It provides an abstraction layer for credential checks,
// taxpayer record operations, and the persistent server log.
type Repository interface {
	domain.CredentialRepository
	domain.TaxpayerRepository
	domain.LogRepository
	Close() error
}

// Server lifecycle states. There is no transition back from stopped.
const (
	serverCreated int32 = iota
	serverListening
	serverStopped
)

// Server is the main struct that orchestrates the registry's network side:
// accepting connections, framing and decoding requests, dispatching commands
// against the repository, and writing responses.
type Server struct {
	ConfigDir      string                     // The configuration directory (defaults to the taxreg folder under the user configuration directory)
	Config         *Config                    // The server configuration
	Repo           Repository                 // DB Repository Interface
	DBWriteChannel chan domain.Log            // DB Write Channel for log entries
	OnLog          func(log domain.Log) error // Function ran on each persisted log entry - used by the GUI application
	Addr           string                     // IP Address the server listens on
	Port           string                     // Port the server listens on
	ReadTimeout    time.Duration              // Per-connection read/write deadline; 0 disables deadlines

	// storeMu is the single process-wide lock serializing all store access.
	// It is held for the full duration of a command's execution, which keeps
	// multi-table writes invisible to concurrent readers until they commit.
	storeMu  sync.Mutex
	listener net.Listener
	state    atomic.Int32
}

// New creates a new Server instance with default configuration and applies any
// provided options.
//
// Usage:
//
//	server, err := taxreg.New(
//		taxreg.WithConfigDir(dir),
//		taxreg.WithRepo(repo),
//	)
//	if err != nil {
//		return err
//	}
//	l, err := server.GetListener(server.Addr, server.Port)
//	if err != nil {
//		return err
//	}
//	return server.Serve(l)
func New(options ...func(*Server) error) (*Server, error) {
	server := &Server{
		DBWriteChannel: make(chan domain.Log, 10),
		Addr:           "127.0.0.1",
		Port:           "65432",
		ReadTimeout:    30 * time.Second,
	}
	err := server.WithOptions(options...)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// GetListener binds the address:port pair and wraps the raw listener so
// recoverable accept errors never stop the server.
func (server *Server) GetListener(address string, port string) (net.Listener, error) {
	rawListener, err := net.Listen("tcp", net.JoinHostPort(address, port))
	if err != nil {
		return nil, fmt.Errorf("setting up listener on address:port %s:%s : %w", address, port, err)
	}
	server.Addr = address
	server.Port = port
	server.WriteLog("INFO", fmt.Sprintf("Taxreg service started on %s:%s", address, port))
	return listener.NewRegistryListener(rawListener), nil
}

// Serve runs the accept loop. Every accepted connection is handled in its own
// goroutine; there is no admission control and no queue depth limit. The loop
// only returns once the listener is closed.
func (server *Server) Serve(l net.Listener) error {
	if !server.state.CompareAndSwap(serverCreated, serverListening) {
		return errors.New("server is not in the created state")
	}
	server.listener = l

	go server.WriteToDB()

	for {
		conn, err := l.Accept()
		if err != nil {
			server.state.Store(serverStopped)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection : %w", err)
		}
		go server.handleConnection(conn)
	}
}

// Close stops the listener. In-flight connections run to completion; the
// server cannot be restarted afterwards.
func (server *Server) Close() {
	server.state.Store(serverStopped)
	if server.listener != nil {
		server.listener.Close()
	}
}

// WriteToDB drains the DB write channel and persists log entries. Failures are
// reported on stderr; the traffic path never blocks on the log store.
func (server *Server) WriteToDB() {
	for entry := range server.DBWriteChannel {
		if server.Repo != nil {
			if err := server.Repo.InsertLog(&entry); err != nil {
				log.Println(err)
			}
		}
		if server.OnLog != nil {
			if err := server.OnLog(entry); err != nil {
				log.Println(err)
			}
		}
	}
}

// WriteLog queues a log entry for persistence. The level should be one of
// DEBUG, INFO, WARN, ERROR, FATAL.
func (server *Server) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	entry := domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, option := range options {
		err := option(&entry)
		if err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}
	server.DBWriteChannel <- entry
	return nil
}

// handleConnection processes exactly one request: frame, decode, dispatch
// under the store lock, respond, close. Nothing that happens in here may
// propagate to the accept loop.
func (server *Server) handleConnection(conn net.Conn) {
	connID, _ := uuid.NewV7()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic while handling connection %s: %v", connID, r)
		}
		conn.Close()
	}()

	if server.ReadTimeout > 0 {
		conn.SetDeadline(time.Now().Add(server.ReadTimeout))
	}

	message, err := wire.ReadMessage(bufio.NewReader(conn))
	if err != nil {
		log.Printf("reading request on connection %s: %v", connID, err)
		server.WriteLog("ERROR", fmt.Sprintf("Failed to read request: %v", err), core.LogWithConnID(connID))
		return
	}

	req, err := wire.DecodeRequest(message)
	if err != nil {
		var unknown *wire.UnknownCommandError
		if errors.As(err, &unknown) {
			// Unrecognized commands are logged and dropped; the client gets no
			// response body, only the connection close.
			log.Printf("connection %s: %v", connID, err)
			server.WriteLog("ERROR", err.Error(), core.LogWithConnID(connID))
			return
		}
		log.Printf("connection %s: %v", connID, err)
		server.WriteLog("ERROR", "Malformed request received", core.LogWithConnID(connID))
		server.respond(conn, []byte(wire.StatusInvalidJSON), connID)
		return
	}

	// The unlock is deferred inside the closure so a panicking handler can
	// never leak the store lock past the connection's recover.
	response := func() []byte {
		server.storeMu.Lock()
		defer server.storeMu.Unlock()
		return server.dispatch(req, connID)
	}()

	server.respond(conn, response, connID)
}

// respond writes the single response message for the connection.
func (server *Server) respond(conn net.Conn, payload []byte, connID uuid.UUID) {
	if err := wire.WriteMessage(conn, payload); err != nil {
		log.Printf("writing response on connection %s: %v", connID, err)
	}
}
