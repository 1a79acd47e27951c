// Package main provides the Night Land game server binary: it restores the
// autosave, runs the authoritative store and serves clients over a
// websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/config"
	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/combat"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/effects"
	"github.com/gregoftheweb/nightland/internal/game/reducer"
	"github.com/gregoftheweb/nightland/internal/game/session"
	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/game/world"
	"github.com/gregoftheweb/nightland/internal/observability"
	"github.com/gregoftheweb/nightland/internal/savegame"
	"github.com/gregoftheweb/nightland/internal/scripting"
	"github.com/gregoftheweb/nightland/internal/server"
	"github.com/gregoftheweb/nightland/internal/storage/backend"
	"github.com/gregoftheweb/nightland/internal/store"
	"github.com/gregoftheweb/nightland/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting nightland",
		zap.String("addr", cfg.Transport.Addr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	// Content
	cat, err := loadCatalog(cfg.Game.ContentDir)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}
	if _, err := cat.Level(cfg.Game.StartLevel); err != nil {
		logger.Fatal("unknown start level", zap.String("level", cfg.Game.StartLevel), zap.Error(err))
	}
	factory := state.NewFactory(cat, logger)
	roller := dice.NewRoller(dice.NewCryptoSource(), logger)

	// Persistence
	storeStart := time.Now()
	kv, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("opening save storage", zap.Error(err))
	}
	logger.Info("save storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Duration("elapsed", time.Since(storeStart)),
	)
	saves := savegame.New(kv, factory, logger)

	initial := factory.Build(cfg.Game.StartLevel)
	if ok, err := saves.HasCurrentGame(ctx); err != nil {
		logger.Error("checking autosave", zap.Error(err))
	} else if ok {
		initial = saves.LoadCurrentGame(ctx)
		logger.Info("autosave restored",
			zap.String("level", initial.CurrentLevelID),
			zap.Int("move_count", initial.MoveCount),
		)
	}

	var autosave *savegame.AutoSaver
	var autosaver store.Autosaver = noAutosave{}
	if cfg.Autosave.Enabled {
		autosave = savegame.NewAutoSaver(saves, cfg.Autosave.Throttle, logger)
		autosaver = autosave
	}

	// Store
	red := reducer.New(factory, logger)
	storeOpts := []store.Option{
		store.WithValidation(cfg.Game.DevMode),
		store.WithEffects(store.PersistenceEffect(saves, autosaver, logger)),
	}

	var st *store.Store
	var scripts *scripting.Manager
	if cfg.Scripting.Dir != "" {
		scripts = scripting.NewManager(roller, logger, cfg.Scripting.InstructionLimit)
		scripts.QueryPlayer = func() *scripting.PlayerInfo {
			if st == nil {
				return nil
			}
			s := st.State()
			return &scripting.PlayerInfo{
				Name:      s.Player.Name,
				HP:        s.Player.CurrentHP,
				MaxHP:     s.Player.MaxHP,
				Row:       s.Player.Position.Row,
				Col:       s.Player.Position.Col,
				LevelID:   s.CurrentLevelID,
				MoveCount: s.MoveCount,
				Kills:     s.MonstersKilled,
			}
		}
		scripts.HasFlag = func(key string) bool {
			if st == nil {
				return false
			}
			s := st.State()
			return s.SubGamesCompleted[key] || s.WaypointSavesCreated[key]
		}
		if err := scripts.LoadTree(cfg.Scripting.Dir); err != nil {
			logger.Fatal("loading scripts", zap.String("dir", cfg.Scripting.Dir), zap.Error(err))
		}
		storeOpts = append(storeOpts, store.WithEffects(store.ScriptEffect(scripts, logger)))
	}

	st = store.New(red, factory.Build(cfg.Game.StartLevel), logger, storeOpts...)
	st.Dispatch(ctx, action.HydrateGameState{State: initial})

	// Session and transport
	sess := session.New(st,
		combat.NewResolver(roller, logger),
		world.New(cat, effects.New(cat, roller, logger), roller, logger),
		logger,
	)
	hub := session.NewHub(logger)
	handler := ws.NewHandler(sess, st, hub, action.NewDecoder(factory), logger,
		ws.WithReadLimit(cfg.Transport.ReadLimit),
	)
	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	httpServer := &http.Server{
		Addr:              cfg.Transport.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("storage", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := kv.Ping(pingCtx); err != nil {
					logger.Warn("save storage health check failed", zap.Error(err))
				}
				cancel()
			}
			return nil
		},
		StopFn: func() {
			if err := kv.Close(); err != nil {
				logger.Warn("closing save storage", zap.Error(err))
			}
		},
	})

	lifecycle.Add("autosave", server.NewBlockingService(func() {
		if autosave != nil {
			autosave.Close()
		}
	}))

	if scripts != nil {
		lifecycle.Add("scripting", server.NewBlockingService(scripts.Close))
	}

	broadcastCtx, stopBroadcast := context.WithCancel(ctx)
	lifecycle.Add("broadcast", &server.FuncService{
		StartFn: func() error { return handler.Run(broadcastCtx) },
		StopFn:  stopBroadcast,
	})

	lifecycle.Add("websocket", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", httpServer.Addr, err)
			}
			logger.Info("websocket server listening",
				zap.String("addr", lis.Addr().String()),
			)
			if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("websocket server shutdown", zap.Error(err))
			}
		},
	})

	logger.Info("nightland initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("level", st.State().CurrentLevelID),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.LoadDir(dir)
}

// noAutosave stands in when autosave is disabled.
type noAutosave struct{}

func (noAutosave) Request(*state.GameState)                     {}
func (noAutosave) Force(context.Context, *state.GameState) error { return nil }
func (noAutosave) Cancel()                                       {}
