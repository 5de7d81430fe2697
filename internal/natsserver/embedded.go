// SPDX-License-Identifier: EPL-2.0

// Package natsserver runs an in-process NATS server so the NATS sink works
// without external infrastructure.
package natsserver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const readyTimeout = 5 * time.Second

// Server wraps an embedded NATS server.
type Server struct {
	ns  *server.Server
	log *slog.Logger
}

// Start launches a server on host:port. Port -1 picks a free port.
func Start(host string, port int, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	opts := &server.Options{
		Host:   host,
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server failed to start within %s", readyTimeout)
	}

	log.Info("embedded NATS server started", slog.String("url", ns.ClientURL()))

	return &Server{ns: ns, log: log}, nil
}

// ClientURL is the nats:// URL clients should dial.
func (s *Server) ClientURL() string { return s.ns.ClientURL() }

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown() {
	if s == nil || s.ns == nil {
		return
	}
	s.log.Info("shutting down embedded NATS server")
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}
