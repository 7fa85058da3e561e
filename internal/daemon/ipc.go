// Package daemon exposes the safety core over a local IPC socket. The
// gateway-facing process connects here and relays orchestrator tool calls;
// nothing in this package trusts the remote side beyond well-formed JSON.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/forgeai/companion/internal/action"
	"github.com/forgeai/companion/internal/connection"
	"github.com/forgeai/companion/internal/safety"
)

// RPC error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// RPCRequest is one newline-delimited JSON request.
type RPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     int64           `json:"id"`
}

// RPCError carries a failure back to the client.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCResponse is the reply to one request.
type RPCResponse struct {
	ID     int64     `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *RPCError `json:"error,omitempty"`
}

// IPCServer serves the safety core over a Unix socket. One goroutine per
// connection; requests on a connection are handled in order, so a blocking
// execute never starves check-only calls arriving on other connections.
type IPCServer struct {
	socketPath string
	listener   net.Listener
	dispatcher *action.Dispatcher
	engine     *safety.Engine
	creds      *connection.Store
	logger     *log.Logger
	version    string

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewIPCServer binds the socket and prepares the server. The socket is
// created mode 0600; an existing file at the path is removed only if it is
// actually a socket.
func NewIPCServer(socketPath string, dispatcher *action.Dispatcher, engine *safety.Engine, creds *connection.Store, logger *log.Logger, version string) (*IPCServer, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	if info, err := os.Stat(socketPath); err == nil {
		if info.Mode()&os.ModeSocket == 0 {
			return nil, fmt.Errorf("path %s exists and is not a socket", socketPath)
		}
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restricting socket permissions: %w", err)
	}

	return &IPCServer{
		socketPath: socketPath,
		listener:   listener,
		dispatcher: dispatcher,
		engine:     engine,
		creds:      creds,
		logger:     logger,
		version:    version,
	}, nil
}

// Start accepts connections until ctx is cancelled or Stop is called.
func (s *IPCServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	s.logger.Info("ipc server listening", "socket", s.socketPath)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// Stop closes the listener and removes the socket file.
func (s *IPCServer) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	err := s.listener.Close()
	s.wg.Wait()
	_ = os.Remove(s.socketPath)
	return err
}

func (s *IPCServer) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req RPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(RPCResponse{Error: &RPCError{Code: ErrCodeParse, Message: "malformed request: " + err.Error()}})
			continue
		}

		resp := s.handle(ctx, req)
		if err := enc.Encode(resp); err != nil {
			s.logger.Error("writing response", "err", err)
			return
		}
	}
}

func (s *IPCServer) handle(ctx context.Context, req RPCRequest) RPCResponse {
	resp := RPCResponse{ID: req.ID}

	result, rpcErr := s.dispatch(ctx, req.Method, req.Params)
	if rpcErr != nil {
		resp.Error = rpcErr
		return resp
	}
	resp.Result = result
	return resp
}

func rpcError(code int, format string, args ...any) *RPCError {
	return &RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}
