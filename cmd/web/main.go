// Web server for go-records: serves the JSON dataset and the records page
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-records/internal/config"
	"github.com/go-while/go-records/internal/records"
	"github.com/go-while/go-records/internal/web"
)

var (
	// command-line flags
	configFile  string
	webhost     string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	serviceDir  string
	webdebug    bool
	pprofAddr   string
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "optional YAML config file (/path/to/records.yaml)")
	flag.StringVar(&webhost, "webhost", "", "Web server bind address (default: 127.0.0.1)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 5001)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&serviceDir, "servicedir", "", "service directory holding templates/ (default: web). the dataset is read from <servicedir>/../data/records.json or <servicedir>/data/records.json")
	flag.BoolVar(&webdebug, "debug", false, "Enable gin debug mode and verbose logging")
	flag.StringVar(&pprofAddr, "pprof", "", "start the pprof web endpoint on this address (e.g. :51111)")
	flag.Parse()

	mainConfig := config.NewDefaultConfig()
	log.Printf("Starting go-records: Web Server (version: %s)", appVersion)

	if configFile != "" {
		if err := mainConfig.LoadFile(configFile); err != nil {
			log.Fatalf("[WEB]: Error loading config: %v", err)
		}
	}

	webConfig := &mainConfig.Web
	applyFlagOverrides(webConfig)
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}

	if pprofAddr != "" {
		profiler := prof.NewProf()
		go profiler.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof endpoint on %s", pprofAddr)
	}

	recs := records.NewService(webConfig.ServiceDir, nil)
	logDatasetCandidates(recs)

	protocol := "http"
	if webConfig.SSL {
		protocol = "https"
	}
	log.Printf("[WEB]: Starting go-records web server on %s://%s", protocol, webConfig.Addr())

	server := web.NewServer(webConfig, recs)

	// Set up cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), webConfig.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during shutdown: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed")
} // end main
