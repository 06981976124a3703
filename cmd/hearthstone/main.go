package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/magefree/hearthstone-go/internal/config"
	"github.com/magefree/hearthstone-go/internal/game"
	"github.com/magefree/hearthstone-go/internal/game/cards"
	"github.com/magefree/hearthstone-go/internal/history"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	statePath  = flag.String("state", "", "initial game state (overrides game.state_file)")
	scriptPath = flag.String("script", "", "action script to play (overrides game.script_file)")
	gameID     = flag.String("game", "", "game id used for history (random when empty)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("game failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	id := *gameID
	if id == "" {
		id = uuid.NewString()
	}
	state := firstNonEmpty(*statePath, cfg.Game.StateFile)
	script := firstNonEmpty(*scriptPath, cfg.Game.ScriptFile)

	logger.Info("starting hearthstone",
		zap.String("version", version),
		zap.String("game_id", id),
		zap.String("state", state),
		zap.String("script", script),
	)

	var records []game.PlayerRecord
	if state != "" {
		var err error
		if records, err = game.LoadRecords(state); err != nil {
			return err
		}
	}

	rec, err := history.Open(ctx, cfg.ToHistory(), id, logger.Named("history"))
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(ctx); err != nil {
			logger.Warn("failed to close history", zap.Error(err))
		}
	}()

	g, err := game.New(logger.With(zap.String("game_id", id)), cards.NewBasicRegistry(), cfg.ToGame(),
		game.WithRecords(records),
		game.WithHistory(rec),
	)
	if err != nil {
		return err
	}

	actions := []game.Action{{Type: game.ActionStart}}
	if script != "" {
		scripted, err := game.LoadScript(script)
		if err != nil {
			return err
		}
		if len(scripted) > 0 && scripted[0].Type == game.ActionStart {
			actions = nil
		}
		actions = append(actions, scripted...)
	}

	out, err := g.Play(actions)
	if err != nil {
		return err
	}
	if !out.Terminated {
		logger.Info("script finished before the game ended",
			zap.Int("turn", g.TurnNumber()),
			zap.String("checksum", g.Checksum()),
		)
		fmt.Println("running")
		return nil
	}
	fmt.Println(out.PlayerID)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
