// Package rpc provides a JSON-RPC 2.0 server exposing the identifier codec,
// the asset catalog and the provider id caches over HTTP and WebSocket.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Klingon-tech/caip/internal/catalog"
	"github.com/Klingon-tech/caip/internal/provider"
	"github.com/Klingon-tech/caip/internal/storage"
	"github.com/Klingon-tech/caip/pkg/logging"
)

// Server is a JSON-RPC 2.0 server.
type Server struct {
	catalog   *catalog.Catalog
	providers *provider.Registry
	store     *storage.Storage
	opts      Options
	log       *logging.Logger
	metrics   *Metrics
	wsHub     *WSHub
	startedAt time.Time

	server   *http.Server
	listener net.Listener

	handlers map[string]Handler
	mu       sync.RWMutex
}

// Options configures optional server features.
type Options struct {
	EnableWebSocket bool
	EnableMetrics   bool
	AllowedOrigins  []string // empty allows any origin
	Logger          *logging.Logger
}

// Handler is a JSON-RPC method handler.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	// NotFound is returned for well-formed lookups with no result.
	NotFound = -32001
)

// NewServer creates a new JSON-RPC server. store may be nil.
func NewServer(cat *catalog.Catalog, providers *provider.Registry, store *storage.Storage, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.GetDefault()
	}

	s := &Server{
		catalog:   cat,
		providers: providers,
		store:     store,
		opts:      opts,
		log:       log.Component("rpc"),
		metrics:   NewMetrics(),
		startedAt: time.Now(),
		handlers:  make(map[string]Handler),
	}
	if opts.EnableWebSocket {
		s.wsHub = NewWSHub(s)
	}

	s.registerHandlers()

	return s
}

// registerHandlers registers all JSON-RPC method handlers.
func (s *Server) registerHandlers() {
	// Identifier codec
	s.handlers["caip_toChainId"] = s.caipToChainID
	s.handlers["caip_fromChainId"] = s.caipFromChainID
	s.handlers["caip_isChainId"] = s.caipIsChainID
	s.handlers["caip_toAssetId"] = s.caipToAssetID
	s.handlers["caip_fromAssetId"] = s.caipFromAssetID
	s.handlers["caip_isAssetId"] = s.caipIsAssetID
	s.handlers["caip_toAccountId"] = s.caipToAccountID
	s.handlers["caip_fromAccountId"] = s.caipFromAccountID

	// Chain metadata
	s.handlers["chains_list"] = s.chainsList
	s.handlers["chains_get"] = s.chainsGet

	// Catalog
	s.handlers["assets_get"] = s.assetsGet
	s.handlers["assets_list"] = s.assetsList

	// Provider ids
	s.handlers["provider_list"] = s.providerList
	s.handlers["provider_toAssetId"] = s.providerToAssetID
	s.handlers["provider_fromAssetId"] = s.providerFromAssetID
	s.handlers["provider_refresh"] = s.providerRefresh

	// Node
	s.handlers["node_status"] = s.nodeStatus
}

// Methods returns the registered method names.
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	methods := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		methods = append(methods, name)
	}
	return methods
}

// Handler returns the HTTP handler serving every enabled transport.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleRPC)
	mux.HandleFunc("POST /{$}", s.handleRPC)
	mux.HandleFunc("OPTIONS /", s.handleCORS)
	mux.HandleFunc("OPTIONS /{$}", s.handleCORS)
	if s.wsHub != nil {
		mux.HandleFunc("GET /ws", s.handleWS)
		mux.HandleFunc("GET /ws/", s.handleWS)
	}
	if s.opts.EnableMetrics {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.corsMiddleware(mux)
}

// Start starts the RPC server.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if s.wsHub != nil {
		go s.wsHub.Run()
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("RPC server error", "error", err)
		}
	}()

	s.log.Info("RPC server started", "addr", listener.Addr().String(), "ws", s.wsHub != nil, "metrics", s.opts.EnableMetrics)
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the RPC server.
func (s *Server) Stop() error {
	if s.wsHub != nil {
		s.wsHub.Stop()
	}
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// WSHub returns the WebSocket hub, nil when WebSocket is disabled.
func (s *Server) WSHub() *WSHub {
	return s.wsHub
}

type requestIDKey struct{}

// RequestID returns the request id carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// handleRPC handles incoming JSON-RPC requests over HTTP.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	ctx := withRequestID(r.Context(), r.Header.Get("X-Request-ID"))
	w.Header().Set("X-Request-ID", RequestID(ctx))

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, errorResponse(nil, &Error{Code: ParseError, Message: "Parse error"}))
		return
	}

	s.writeResponse(w, s.dispatch(ctx, &req))
}

// dispatch runs one request and builds its response. It is shared by the
// HTTP and WebSocket transports.
func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	if RequestID(ctx) == "" {
		ctx = withRequestID(ctx, "")
	}
	start := time.Now()

	if req.JSONRPC != "2.0" {
		s.metrics.observe("invalid", "error", time.Since(start))
		return errorResponse(req.ID, &Error{Code: InvalidRequest, Message: "Invalid Request"})
	}

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	if !ok {
		s.metrics.observe("unknown", "error", time.Since(start))
		return errorResponse(req.ID, &Error{Code: MethodNotFound, Message: "Method not found", Data: req.Method})
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		rpcErr := s.toRPCError(err)
		s.metrics.observe(req.Method, "error", time.Since(start))
		s.log.Debug("RPC request failed",
			"request_id", RequestID(ctx),
			"method", req.Method,
			"code", rpcErr.Code,
			"error", err)
		return errorResponse(req.ID, rpcErr)
	}

	s.metrics.observe(req.Method, "ok", time.Since(start))
	s.log.Debug("RPC request", "request_id", RequestID(ctx), "method", req.Method, "duration", time.Since(start))
	return &Response{JSONRPC: "2.0", Result: result, ID: req.ID}
}

func errorResponse(id interface{}, err *Error) *Response {
	return &Response{JSONRPC: "2.0", Error: err, ID: id}
}

// writeResponse writes a response as JSON.
func (s *Server) writeResponse(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Debug("Failed to write response", "error", err)
	}
}

// handleCORS handles CORS preflight requests.
func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// corsMiddleware adds CORS headers to all responses.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		if s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400") // Cache preflight for 24 hours
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
