// Package main provides a headless battle simulator. It drives encounters
// through the battle state machine with a simple scripted player, which is
// useful for balance sweeps and replaying seeds.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/kellsworth/skyquest/internal/config"
	"github.com/kellsworth/skyquest/internal/game/battle"
	"github.com/kellsworth/skyquest/internal/game/bestiary"
	"github.com/kellsworth/skyquest/internal/game/item"
	"github.com/kellsworth/skyquest/internal/game/progression"
	"github.com/kellsworth/skyquest/internal/game/rng"
	"github.com/kellsworth/skyquest/internal/observability"
	"github.com/kellsworth/skyquest/internal/storage/postgres"
)

// maxTicksPerEncounter aborts a run if a session ever stops making progress.
const maxTicksPerEncounter = 100_000

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	storeKind := flag.String("store", "memory", "hero store backend: memory or postgres")
	heroName := flag.String("hero", "sim-hero", "hero name (postgres store only)")
	boss := flag.Bool("boss", false, "fight a boss instead of a normal enemy")
	enemyType := flag.Int("type", 0, "enemy or boss type id")
	seed := flag.Int64("seed", 0, "RNG seed; 0 uses crypto randomness")
	encounters := flag.Int("encounters", 1, "number of consecutive encounters to run")
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

	registry, err := bestiary.Load(cfg.Content.EnemiesPath, cfg.Content.BossesPath)
	if err != nil {
		logger.Fatal("loading bestiary", zap.Error(err))
	}
	catalog, err := item.LoadCatalog(cfg.Content.ItemsPath)
	if err != nil {
		logger.Fatal("loading item catalog", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("enemies", registry.EnemyCount()),
		zap.Int("bosses", registry.BossCount()),
		zap.Int("items", catalog.Len()),
	)

	var heroes battle.ProgressionStore
	var items battle.InventoryStore
	switch *storeKind {
	case "memory":
		heroes = progression.NewMemoryStore(starterHero(*heroName))
		items = item.NewMemoryInventory(map[string]int{"tonic": 2, "ether": 1})
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		repo := postgres.NewHeroRepository(pool.DB())
		hero, err := repo.GetByName(ctx, *heroName)
		if errors.Is(err, progression.ErrHeroNotFound) {
			hero, err = repo.Create(ctx, starterHero(*heroName))
		}
		if err != nil {
			logger.Fatal("loading hero", zap.Error(err))
		}
		heroes = repo.Store(hero.ID)
		items = postgres.NewInventoryStore(pool.DB(), hero.ID)
	default:
		logger.Fatal("unknown store backend", zap.String("store", *storeKind))
	}

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeeded(*seed)
		logger.Info("using seeded randomness", zap.Int64("seed", *seed))
	} else {
		src = rng.NewCryptoSource()
	}

	timing := battle.Timing{
		Intro:   cfg.Battle.IntroTicks,
		Act:     cfg.Battle.ActTicks,
		Resolve: cfg.Battle.ResolveTicks,
		Outcome: cfg.Battle.OutcomeTicks,
	}
	sink := &battle.ZapSink{Logger: logger}
	session := battle.NewSession(logger, src, sink, heroes, items, registry, catalog,
		timing, cfg.Battle.DefeatSeverity)

	desc := battle.NormalEncounter(*enemyType)
	if *boss {
		desc = battle.BossEncounter(*enemyType)
	}

	for i := 0; i < *encounters; i++ {
		if err := runEncounter(ctx, logger, session, items, desc, i); err != nil {
			logger.Fatal("encounter failed", zap.Int("encounter", i), zap.Error(err))
		}
	}

	final, err := heroes.Snapshot(ctx)
	if err != nil {
		logger.Fatal("reading final hero", zap.Error(err))
	}
	logger.Info("simulation complete",
		zap.Int("encounters", *encounters),
		zap.Int("hero_level", final.Level),
		zap.Int("hero_xp", final.XP),
		zap.Int("hero_hp", final.HP),
		zap.Int("hero_kills", final.Kills),
		zap.Int("win_streak", final.WinStreak),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func starterHero(name string) progression.Hero {
	return progression.Hero{
		Name:    name,
		Level:   1,
		HP:      40,
		MaxHP:   40,
		SP:      6,
		MaxSP:   6,
		Attack:  12,
		Defense: 5,
		Speed:   10,
		Loadout: "flame",
	}
}

func runEncounter(ctx context.Context, logger *zap.Logger, session *battle.Session,
	items battle.InventoryStore, desc battle.Descriptor, n int) error {
	if err := session.StartEncounter(ctx, desc); err != nil {
		return err
	}

	for tick := 0; tick < maxTicksPerEncounter; tick++ {
		status, err := session.Tick(ctx, nextInput(ctx, session, items))
		if err != nil {
			return err
		}
		if status == battle.StatusEnded {
			logger.Info("encounter finished",
				zap.Int("encounter", n),
				zap.Int("turns", session.TurnNumber()),
				zap.Int("ticks", tick+1),
			)
			return nil
		}
	}
	return errors.New("encounter exceeded tick limit")
}

// nextInput is the scripted player. It presses at most one button per
// tick: it walks the root menu cursor toward the desired slot and
// confirms, drinking the first item when the hero is low.
func nextInput(ctx context.Context, session *battle.Session, items battle.InventoryStore) battle.Input {
	switch session.State() {
	case battle.StatePlayerTurn:
		hero := session.Player()
		if hero.LowHP() && holdsItems(ctx, items) {
			return battle.Input{Secondary: true}
		}
		target := 0
		if hero.SP > 0 && session.TurnNumber()%4 == 0 {
			target = 2 // special every fourth turn while SP lasts
		}
		switch cursor := session.MenuCursor(); {
		case cursor < target:
			return battle.Input{Down: true}
		case cursor > target:
			return battle.Input{Up: true}
		default:
			return battle.Input{Confirm: true}
		}
	case battle.StateItemSelect:
		return battle.Input{Confirm: true}
	default:
		return battle.Input{}
	}
}

func holdsItems(ctx context.Context, items battle.InventoryStore) bool {
	stacks, err := items.UsableItems(ctx)
	return err == nil && len(stacks) > 0
}
