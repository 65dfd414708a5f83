package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/mux"
	"github.com/oasisprotocol/oasis-core/go/common/logging"
	"github.com/rs/cors"
)

// httpConfig is the JSON-RPC/HTTP configuration.
type httpConfig struct {
	Modules            []string
	CorsAllowedOrigins []string
	prefix             string // path prefix on which to mount http handler
}

// httpServer handle http connection and rpc requests.
type httpServer struct {
	ctx      context.Context
	logger   *logging.Logger
	timeouts rpc.HTTPTimeouts

	server *http.Server

	// rpcHandler holds the whole http handler
	rpcHandler http.Handler
	// rpcServer handle json rpc requests
	rpcServer *rpc.Server

	httpConfig httpConfig

	// These are set by setListenAddr.
	endpoint string
	host     string
	port     int
}

func newHTTPServer(ctx context.Context, logger *logging.Logger, timeouts rpc.HTTPTimeouts) *httpServer {
	h := &httpServer{ctx: ctx, logger: logger, timeouts: timeouts}
	return h
}

// setListenAddr configures the listening address of the server.
// The address can only be set while the server isn't running.
func (h *httpServer) setListenAddr(host string, port int) error {
	if h.server != nil {
		return fmt.Errorf("HTTP server already running on %s", h.endpoint)
	}
	h.host, h.port = host, port
	h.endpoint = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}

// start starts the HTTP server if it is enabled and not already running.
func (h *httpServer) start() error {
	if h.endpoint == "" {
		h.logger.Info("RPC endpoint not specified")
		return nil
	}

	// Initialize the server.
	CheckTimeouts(&h.timeouts)
	h.server = &http.Server{
		Handler:      h.rpcHandler,
		ReadTimeout:  h.timeouts.ReadTimeout,
		WriteTimeout: h.timeouts.WriteTimeout,
		IdleTimeout:  h.timeouts.IdleTimeout,
	}

	// Start the server.
	listener, err := net.Listen("tcp", h.endpoint)
	if err != nil {
		h.logger.Error("tcp listen failed", "err", err)
		return err
	}

	//nolint:errcheck
	go h.server.Serve(listener)
	// Random port is determined by the server. Retrieve it.
	if h.port == 0 {
		h.endpoint = listener.Addr().String()
		_, portStr, err := net.SplitHostPort(h.endpoint)
		if err != nil {
			h.logger.Error("splitting host:port of listener failed", "err", err)
			return err
		}
		h.port, err = strconv.Atoi(portStr)
		if err != nil {
			h.logger.Error("parsing of listener port failed", "port", portStr, "err", err)
			return err
		}
	}

	h.logger.Info("HTTP server started",
		"endpoint", listener.Addr(),
		"prefix", h.httpConfig.prefix,
		"cors", strings.Join(h.httpConfig.CorsAllowedOrigins, ","),
	)
	return nil
}

// validatePrefix checks if 'path' is a valid configuration value for the RPC prefix option.
func validatePrefix(what, path string) error {
	if path == "" {
		return nil
	}
	if path[0] != '/' {
		return fmt.Errorf(`%s RPC path prefix %q does not contain leading "/"`, what, path)
	}
	if strings.ContainsAny(path, "?#") {
		// These would match once URL-escaped, but are confusing as a configured prefix.
		return fmt.Errorf("%s RPC path prefix %q contains URL meta-characters", what, path)
	}
	return nil
}

// stop shuts down the HTTP server.
func (h *httpServer) stop() {
	if h.server == nil {
		return
	}
	if err := h.server.Shutdown(h.ctx); err != nil {
		h.logger.Error("error while shutting down HTTP server", "err", err)
	}
	if h.rpcServer != nil {
		h.rpcServer.Stop()
	}
	h.logger.Info("HTTP server stopped", "endpoint", h.endpoint)
	h.server = nil
}

// enableRPC turns on JSON-RPC over HTTP on the server.
func (h *httpServer) enableRPC(apis []rpc.API, config httpConfig) error {
	// Create RPC server and handler.
	srv := rpc.NewServer()
	if err := RegisterApis(apis, config.Modules, srv); err != nil {
		return err
	}
	h.httpConfig = config
	if h.httpConfig.prefix == "" {
		h.httpConfig.prefix = "/"
	}

	h.rpcServer = srv
	router := mux.NewRouter()
	router.PathPrefix(h.httpConfig.prefix).HandlerFunc(h.rpcServer.ServeHTTP).Methods(http.MethodPost)
	h.rpcHandler = newCorsHandler(router, h.httpConfig.CorsAllowedOrigins)

	return nil
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

// RegisterApis registers the APIs whose namespace is in modules.
func RegisterApis(apis []rpc.API, modules []string, srv *rpc.Server) error {
	// Generate the allow list based on the allowed modules
	allowList := make(map[string]bool)
	for _, module := range modules {
		allowList[module] = true
	}
	// Register all the APIs exposed by the services
	for _, api := range apis {
		if allowList[api.Namespace] {
			if err := srv.RegisterName(api.Namespace, api.Service); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckTimeouts ensures that timeout values are meaningful.
func CheckTimeouts(timeouts *rpc.HTTPTimeouts) {
	if timeouts.ReadTimeout < time.Second {
		timeouts.ReadTimeout = rpc.DefaultHTTPTimeouts.ReadTimeout
	}
	if timeouts.WriteTimeout < time.Second {
		timeouts.WriteTimeout = rpc.DefaultHTTPTimeouts.WriteTimeout
	}
	if timeouts.IdleTimeout < time.Second {
		timeouts.IdleTimeout = rpc.DefaultHTTPTimeouts.IdleTimeout
	}
}
