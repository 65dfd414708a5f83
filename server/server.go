package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/oasisprotocol/latest-block/conf"
)

// Gateway is a container on which JSON-RPC services can be registered and
// served over HTTP.
type Gateway struct {
	config *conf.GatewayConfig
	logger *logging.Logger

	stop          chan struct{} // Channel to wait for termination notifications
	startStopLock sync.Mutex    // Start/Stop are protected by an additional lock
	state         int           // Tracks state of node lifecycle

	lock    sync.Mutex
	rpcAPIs []rpc.API // List of APIs currently provided by the gateway
	http    *httpServer
}

const (
	initializingState = iota
	runningState
	closedState
)

var (
	ErrServerStopped = errors.New("gateway server not started")
	ErrServerRunning = errors.New("gateway server already running")
)

func timeoutsFromCfg(cfg *conf.HTTPTimeouts) rpc.HTTPTimeouts {
	timeouts := rpc.DefaultHTTPTimeouts
	if cfg != nil {
		if cfg.Idle != nil {
			timeouts.IdleTimeout = *cfg.Idle
		}
		if cfg.Read != nil {
			timeouts.ReadTimeout = *cfg.Read
		}
		if cfg.Write != nil {
			timeouts.WriteTimeout = *cfg.Write
		}
	}
	return timeouts
}

// New creates a new gateway.
func New(ctx context.Context, conf *conf.GatewayConfig) (*Gateway, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing gateway config")
	}
	if conf.HTTP == nil {
		return nil, fmt.Errorf("missing gateway http config")
	}

	server := &Gateway{
		config: conf,
		logger: logging.GetLogger("gateway"),
		stop:   make(chan struct{}),
	}

	// Check HTTP prefix is valid.
	if err := validatePrefix("HTTP", conf.HTTP.PathPrefix); err != nil {
		return nil, err
	}

	server.http = newHTTPServer(ctx, server.logger.With("server", "http"), timeoutsFromCfg(conf.HTTP.Timeouts))

	return server, nil
}

// Start starts the gateway. A gateway can only be started once.
func (srv *Gateway) Start() error {
	srv.startStopLock.Lock()
	defer srv.startStopLock.Unlock()

	srv.lock.Lock()
	switch srv.state {
	case runningState:
		srv.lock.Unlock()
		return ErrServerRunning
	case closedState:
		srv.lock.Unlock()
		return ErrServerStopped
	}
	srv.state = runningState
	// start RPC endpoints
	err := srv.startRPC()
	if err != nil {
		srv.stopRPC()
	}
	srv.lock.Unlock()

	// Check if RPC endpoint startup failed.
	if err != nil {
		_ = srv.doClose(nil)
		return err
	}
	return nil
}

// Close stops the gateway and releases resources acquired in New.
func (srv *Gateway) Close() error {
	srv.startStopLock.Lock()
	defer srv.startStopLock.Unlock()

	srv.lock.Lock()
	state := srv.state
	srv.lock.Unlock()
	switch state {
	case initializingState:
		// The server was never started.
		return srv.doClose(nil)
	case runningState:
		// The server was started, release resources acquired by Start().
		srv.stopRPC()
		return srv.doClose(nil)
	case closedState:
		return ErrServerStopped
	default:
		panic(fmt.Sprintf("server is in unknown state %d", state))
	}
}

// doClose releases resources acquired by New(), collecting errors.
func (srv *Gateway) doClose(errs []error) error {
	srv.lock.Lock()
	srv.state = closedState
	srv.lock.Unlock()

	// Unblock n.Wait.
	close(srv.stop)

	// Report any errors that might have occurred.
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%v", errs)
	}
}

// startRPC is a helper method to configure the RPC endpoint during server startup.
func (srv *Gateway) startRPC() error {
	config := httpConfig{
		Modules:            []string{"head"},
		CorsAllowedOrigins: srv.config.HTTP.Cors,
		prefix:             srv.config.HTTP.PathPrefix,
	}
	if err := srv.http.setListenAddr(srv.config.HTTP.Host, srv.config.HTTP.Port); err != nil {
		return err
	}
	if err := srv.http.enableRPC(srv.rpcAPIs, config); err != nil {
		return err
	}
	return srv.http.start()
}

func (srv *Gateway) stopRPC() {
	srv.http.stop()
}

// Wait blocks until the server is closed.
func (srv *Gateway) Wait() {
	<-srv.stop
}

// RegisterAPIs registers the APIs a service provides on the server.
func (srv *Gateway) RegisterAPIs(apis []rpc.API) {
	srv.lock.Lock()
	defer srv.lock.Unlock()

	if srv.state != initializingState {
		panic("can't register APIs on running/stopped server")
	}
	srv.rpcAPIs = append(srv.rpcAPIs, apis...)
}

// GetHTTPEndpoint returns the URL of the HTTP server, including the path
// prefix. Only meaningful once the server is running.
func (srv *Gateway) GetHTTPEndpoint() (string, error) {
	srv.lock.Lock()
	defer srv.lock.Unlock()

	if srv.state != runningState {
		return "", ErrServerStopped
	}
	return fmt.Sprintf("http://%s%s", srv.http.endpoint, srv.http.httpConfig.prefix), nil
}
