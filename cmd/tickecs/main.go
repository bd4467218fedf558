package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/tickecs/internal/config"
	"github.com/l1jgo/tickecs/internal/core/event"
	coresys "github.com/l1jgo/tickecs/internal/core/system"
	"github.com/l1jgo/tickecs/internal/data"
	"github.com/l1jgo/tickecs/internal/scripting"
	"github.com/l1jgo/tickecs/internal/system"
	"github.com/l1jgo/tickecs/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/tickecs.toml"
	if p := os.Getenv("TICKECS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	// 3. World and prefabs
	w := world.New(world.WithLogger(log), world.WithEventCapacity(cfg.World.EventCapacity))
	printSection("world")
	printOK("world " + w.ID())

	catalog := data.StandardCatalog()
	if cfg.Data.PrefabFile != "" {
		prefabs, err := data.LoadPrefabTable(cfg.Data.PrefabFile, catalog)
		if err != nil {
			return fmt.Errorf("load prefabs: %w", err)
		}
		printStat("prefabs", prefabs.Count())
		spawned, err := spawnAll(w, prefabs, cfg.Data.Spawn)
		if err != nil {
			return err
		}
		printStat("entities", spawned)
	}

	// 4. Systems: built-in first, then Lua systems in file order
	builtin := []coresys.System{
		system.NewMovementSystem(),
		system.NewExpirySystem(log),
		system.NewRemovalLogSystem(log),
	}
	for _, s := range builtin {
		if err := w.AddSystem(s); err != nil {
			return err
		}
	}

	if cfg.Scripting.Dir != "" {
		engine := scripting.NewEngine(w, catalog, log)
		defer engine.Close()
		scripts, err := engine.LoadDir(cfg.Scripting.Dir)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		for _, s := range scripts {
			if err := w.AddSystem(s); err != nil {
				return err
			}
		}
		printStat("lua systems", len(scripts))
	}

	event.Subscribe(w.Events(), func(ev event.EntitiesRecycled) {
		log.Debug("recycled", zap.Int("count", len(ev.IDs)), zap.Uint64("generation", uint64(ev.Generation)))
	})

	// 5. Tick loop
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(cfg.Loop.TickRate.Duration)
	defer ticker.Stop()

	printSection("running")
	printOK(fmt.Sprintf("tick rate %s", cfg.Loop.TickRate))
	fmt.Println()

	start := time.Now()
	last := start
	for {
		select {
		case now := <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			delta := now.Sub(last).Seconds()
			last = now
			if err := w.ExecuteAt(ctx, now.Sub(start).Seconds(), delta); err != nil {
				return fmt.Errorf("tick %d: %w", w.Ticks()+1, err)
			}
			if cfg.Loop.MaxTicks > 0 && w.Ticks() >= cfg.Loop.MaxTicks {
				log.Info("tick limit reached", zap.Uint64("ticks", w.Ticks()))
				return w.Terminate(context.Background())
			}
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return w.Terminate(context.Background())
		}
	}
}

func spawnAll(w *world.World, prefabs *data.PrefabTable, spawns []config.SpawnConfig) (int, error) {
	n := 0
	for _, sp := range spawns {
		for i := 0; i < sp.Count; i++ {
			if _, err := prefabs.Spawn(w, sp.Prefab); err != nil {
				return n, fmt.Errorf("spawn %s: %w", sp.Prefab, err)
			}
			n++
		}
	}
	return n, nil
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	switch cfg.Mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
