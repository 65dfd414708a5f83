package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oasisprotocol/oasis-core/go/common/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/oasisprotocol/latest-block/conf"
	"github.com/oasisprotocol/latest-block/fetcher"
	"github.com/oasisprotocol/latest-block/log"
	"github.com/oasisprotocol/latest-block/rpc"
	"github.com/oasisprotocol/latest-block/server"
	"github.com/oasisprotocol/latest-block/version"
)

var (
	// Path to the configuration file.
	configFile string
	// latest-block root command
	rootCmd = &cobra.Command{
		Use:   "latest-block",
		Short: "Print the latest Ethereum block number",
		Run:   runRoot,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve head_latestBlock over JSON-RPC/HTTP",
		Run:   runServe,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}
)

// The global logger.
var logger = logging.GetLogger("latest-block")

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config.yml file")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize loads the configuration, sets up logging and builds the fetcher.
func initialize() (*conf.Config, *fetcher.Fetcher) {
	cfg, err := conf.InitConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to initialize config: %v\n", err)
		os.Exit(1)
	}
	if err = log.InitLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Unable to initialize logging: %v\n", err)
		os.Exit(1)
	}

	opts := append(cfg.Fetcher.Options(), fetcher.WithLogger(logging.GetLogger("fetcher")))
	return cfg, fetcher.New(fetcher.DefaultEndpoint, opts...)
}

func runRoot(cmd *cobra.Command, args []string) {
	_, f := initialize()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	block, err := f.LatestBlock(ctx)
	if err != nil {
		logger.Error("failed to fetch latest block", "err", err, "endpoint", f.Endpoint())
		os.Exit(1)
	}
	fmt.Println(block)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, f := initialize()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting gateway",
		"version", version.Software,
		"toolchain", version.Toolchain,
		"go_ethereum", version.GetGoEthereumVersion(),
		"endpoint", f.Endpoint(),
	)

	gw, err := server.New(ctx, cfg.Gateway)
	if err != nil {
		logger.Error("failed to create gateway", "err", err)
		os.Exit(1)
	}
	gw.RegisterAPIs(rpc.GetRPCAPIs(f.LatestBlock))

	if cfg.Gateway.Monitoring.Enabled() {
		addr := cfg.Gateway.Monitoring.Address()
		go func() {
			logger.Info("monitoring server started", "address", addr)
			srv := &http.Server{
				Addr:              addr,
				Handler:           promhttp.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("monitoring server failed", "err", err)
			}
		}()
	}

	if err = gw.Start(); err != nil {
		logger.Error("failed to start gateway", "err", err)
		os.Exit(1)
	}

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)

		<-sigc
		logger.Info("Got interrupt, shutting down...")
		if err := gw.Close(); err != nil {
			logger.Error("failed to close gateway", "err", err)
		}
	}()

	gw.Wait()
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Software version: %s\n", version.Software)
	fmt.Printf("Go toolchain version: %s\n", version.Toolchain)
	fmt.Printf("go-ethereum version: %s\n", version.GetGoEthereumVersion())
}
