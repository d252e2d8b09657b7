package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lolscout/agent/internal/applog"
	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/internal/config"
	"github.com/lolscout/agent/internal/observer"
	"github.com/lolscout/agent/internal/supervisor"
	"go.uber.org/zap"
)

func main() {
	resolved, cfgErr := config.Load()
	log := applog.New(resolved.LogLevel)
	defer log.Sync()

	if cfgErr != nil {
		log.Warn("config: using defaults", zap.Error(cfgErr))
	}

	registry, err := champions.New(log)
	if err != nil {
		log.Fatal("champions: failed to load embedded data", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := observer.NewHub(ctx)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatal("observer: failed to bind diagnostics listener", zap.Error(err))
	}
	go func() {
		log.Info("diagnostics server listening", zap.String("addr", listener.Addr().String()))
		srv := &http.Server{Handler: observer.Routes(hub)}
		if err := srv.Serve(listener); err != nil && ctx.Err() == nil {
			log.Warn("observer: server stopped", zap.Error(err))
		}
	}()

	super := supervisor.New(log, resolved.Config, registry, hub)
	if err := super.Run(ctx); err != nil {
		log.Error("supervisor exited with error", zap.Error(err))
	}

	hub.Inbox() <- observer.Shutdown{}
	log.Info("shutdown complete")
}
