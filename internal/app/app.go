// Package app wires every subsystem together and runs the server process:
// logging, catalogs, the lobby registry, ingress/broadcast, the supervisor,
// the UDP gameplay listener, and the HTTP control plane.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"crossfire/server/internal/broadcast"
	"crossfire/server/internal/config"
	"crossfire/server/internal/controlplane"
	"crossfire/server/internal/ingress"
	"crossfire/server/internal/metrics"
	"crossfire/server/internal/registry"
	"crossfire/server/internal/scene"
	"crossfire/server/internal/supervisor"
	"crossfire/server/internal/udp"
	"crossfire/server/internal/weapon"
	"crossfire/server/logging"
	loggingSinks "crossfire/server/logging/sinks"
)

// Run starts the server and blocks until ctx is cancelled or a fatal error
// occurs.
func Run(ctx context.Context) error {
	fallback := log.Default()
	cfg := config.Load()

	weapons, err := loadWeapons(cfg)
	if err != nil {
		return fmt.Errorf("app: load weapon catalog: %w", err)
	}
	scenes, err := loadScenes(cfg)
	if err != nil {
		return fmt.Errorf("app: load scene catalog: %w", err)
	}

	router, err := buildLoggingRouter(cfg, fallback)
	if err != nil {
		return fmt.Errorf("app: construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			fallback.Printf("app: failed to close logging router: %v", cerr)
		}
	}()

	reg := registry.New(16)
	m := metrics.New()
	ingressRouter := ingress.New(reg, router, m)

	listener, err := udp.Bind(cfg.UDPBindAddr)
	if err != nil {
		return fmt.Errorf("app: bind udp listener: %w", err)
	}
	defer listener.Close()

	broadcaster := broadcast.New(listener.Conn(), router, m)

	supCfg := supervisor.Config{
		TickRate:        cfg.TickRate,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
		WarningStep:     cfg.WarningStep,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		InactiveTimeout: cfg.InactiveTimeout,
	}
	sup := supervisor.New(supCfg, reg, weapons, scenes, router, m, ingressRouter, broadcaster)

	udpCtx, cancelUDP := context.WithCancel(ctx)
	defer cancelUDP()
	go func() {
		if err := listener.Run(udpCtx, ingressRouter.HandlePacket); err != nil {
			fallback.Printf("app: udp listener stopped: %v", err)
		}
	}()

	handler := controlplane.NewRouter(sup, m)
	srv := &http.Server{Addr: cfg.HTTPBindAddr, Handler: handler}

	serveErr := make(chan error, 1)
	go func() {
		fallback.Printf("control plane listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()
	fallback.Printf("gameplay udp listening on %s", cfg.UDPBindAddr)

	select {
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
		return nil
	case err := <-serveErr:
		return err
	}
}

func loadWeapons(cfg config.Config) (*weapon.Catalog, error) {
	if cfg.WeaponCatalogPath != "" && weapon.Exists(cfg.WeaponCatalogPath) {
		return weapon.Load(cfg.WeaponCatalogPath)
	}
	return weapon.LoadDefault()
}

func loadScenes(cfg config.Config) (*scene.Catalog, error) {
	if cfg.SceneCatalogPath != "" {
		if _, err := os.Stat(cfg.SceneCatalogPath); err == nil {
			return scene.Load(cfg.SceneCatalogPath)
		}
	}
	return scene.LoadDefault()
}

func buildLoggingRouter(cfg config.Config, fallback *log.Logger) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Console.Development = cfg.LogDevelopment
	logCfg.EnabledSinks = []string{"console"}

	consoleSink, err := loggingSinks.NewConsoleSink(logCfg.Console)
	if err != nil {
		return nil, fmt.Errorf("build console sink: %w", err)
	}

	available := map[string]logging.Sink{
		"console": consoleSink,
	}

	if cfg.LogJSONPath != "" {
		logCfg.JSON.FilePath = cfg.LogJSONPath
		jsonSink, err := loggingSinks.NewJSONSink(logCfg.JSON)
		if err != nil {
			return nil, fmt.Errorf("build json sink: %w", err)
		}
		available["json"] = jsonSink
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "json")
	}

	return logging.NewRouter(logCfg, logging.SystemClock{}, fallback, available)
}
