// Command origind is the origin HTTP/1.1 server's entry point: flag
// parsing, logger setup, signal handling, and the acceptor run loop.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nnickles/origind/internal/acceptor"
	"github.com/nnickles/origind/internal/config"
	"github.com/nnickles/origind/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("origind: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger := logging.New(cfg.Debug)

	a, err := acceptor.New(cfg, logger)
	if err != nil {
		logger.Errorf("failed to start: %v", err)
		os.Exit(1)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Infof("received %v, shutting down", sig)
		a.Stop()
	}()

	if err := a.Run(); err != nil {
		logger.Errorf("server exited with error: %v", err)
		os.Exit(1)
	}
}
