package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kellsworth/skyquest/internal/game/progression"
)

// ErrHeroExists is returned when attempting to create a duplicate hero name.
var ErrHeroExists = errors.New("hero already exists")

const heroColumns = `id, name, level, xp, hp, max_hp, sp, max_sp,
	attack, defense, speed, loadout, kills, win_streak, dropless_streak`

// HeroRepository provides hero persistence operations.
type HeroRepository struct {
	db *pgxpool.Pool
}

// NewHeroRepository creates a HeroRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHeroRepository(db *pgxpool.Pool) *HeroRepository {
	return &HeroRepository{db: db}
}

// Create inserts a new hero row.
//
// Precondition: h.Name must be non-empty.
// Postcondition: Returns the created hero with ID set, or ErrHeroExists
// if the name is taken.
func (r *HeroRepository) Create(ctx context.Context, h progression.Hero) (progression.Hero, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO heroes (name, level, xp, hp, max_hp, sp, max_sp,
		    attack, defense, speed, loadout, kills, win_streak, dropless_streak)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		h.Name, h.Level, h.XP, h.HP, h.MaxHP, h.SP, h.MaxSP,
		h.Attack, h.Defense, h.Speed, h.Loadout, h.Kills, h.WinStreak, h.DroplessStreak,
	).Scan(&h.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return progression.Hero{}, ErrHeroExists
		}
		return progression.Hero{}, fmt.Errorf("creating hero: %w", err)
	}
	return h, nil
}

// GetByName fetches a hero by its unique name.
//
// Postcondition: Returns the hero or progression.ErrHeroNotFound.
func (r *HeroRepository) GetByName(ctx context.Context, name string) (progression.Hero, error) {
	return scanHero(r.db.QueryRow(ctx,
		`SELECT `+heroColumns+` FROM heroes WHERE name = $1`, name))
}

// GetByID fetches a hero by primary key.
//
// Postcondition: Returns the hero or progression.ErrHeroNotFound.
func (r *HeroRepository) GetByID(ctx context.Context, id int64) (progression.Hero, error) {
	return scanHero(r.db.QueryRow(ctx,
		`SELECT `+heroColumns+` FROM heroes WHERE id = $1`, id))
}

// Store returns a HeroStore bound to the given hero ID, suitable for
// wiring into a battle session.
func (r *HeroRepository) Store(heroID int64) *HeroStore {
	return &HeroStore{db: r.db, heroID: heroID}
}

func scanHero(row pgx.Row) (progression.Hero, error) {
	var h progression.Hero
	err := row.Scan(&h.ID, &h.Name, &h.Level, &h.XP, &h.HP, &h.MaxHP, &h.SP, &h.MaxSP,
		&h.Attack, &h.Defense, &h.Speed, &h.Loadout, &h.Kills, &h.WinStreak, &h.DroplessStreak)
	if errors.Is(err, pgx.ErrNoRows) {
		return progression.Hero{}, progression.ErrHeroNotFound
	}
	if err != nil {
		return progression.Hero{}, fmt.Errorf("scanning hero: %w", err)
	}
	return h, nil
}

// HeroStore is a progression store bound to a single hero row. It
// satisfies the battle core's ProgressionStore collaborator.
//
// Commits run SELECT ... FOR UPDATE inside a transaction so that the
// level-up and penalty arithmetic applies to the current row even when
// several sessions share a pool.
type HeroStore struct {
	db     *pgxpool.Pool
	heroID int64
}

// NewHeroStore creates a store bound to the given hero ID.
func NewHeroStore(db *pgxpool.Pool, heroID int64) *HeroStore {
	return &HeroStore{db: db, heroID: heroID}
}

// Snapshot returns the current persisted hero.
func (s *HeroStore) Snapshot(ctx context.Context) (progression.Hero, error) {
	return scanHero(s.db.QueryRow(ctx,
		`SELECT `+heroColumns+` FROM heroes WHERE id = $1`, s.heroID))
}

// CommitVictory writes back surviving pools, applies the XP award with
// level-up processing, and advances the kill and streak counters.
func (s *HeroStore) CommitVictory(ctx context.Context, wb progression.VictoryWriteback) (progression.LevelUpReport, error) {
	var report progression.LevelUpReport
	err := s.update(ctx, func(h *progression.Hero) {
		h.HP = clampInt(wb.HP, 0, h.MaxHP)
		h.SP = clampInt(wb.SP, 0, h.MaxSP)
		h.Kills++
		h.WinStreak++
		if wb.Dropped {
			h.DroplessStreak = 0
		} else {
			h.DroplessStreak++
		}
		leveled := progression.ApplyXP(h, wb.XPAward)
		report = progression.LevelUpReport{
			LeveledUp: leveled,
			NewLevel:  h.Level,
			NewMaxHP:  h.MaxHP,
			NewMaxSP:  h.MaxSP,
		}
	})
	if err != nil {
		return progression.LevelUpReport{}, err
	}
	return report, nil
}

// CommitDefeat writes back the pools, keeps any partial XP, applies the
// HP penalty, and resets the win streak.
func (s *HeroStore) CommitDefeat(ctx context.Context, wb progression.DefeatWriteback, severity int) error {
	return s.update(ctx, func(h *progression.Hero) {
		h.HP = clampInt(wb.HP, 0, h.MaxHP)
		h.SP = clampInt(wb.SP, 0, h.MaxSP)
		h.WinStreak = 0
		progression.ApplyXP(h, wb.XPAward)
		progression.ApplyDefeatPenalty(h, severity)
	})
}

// CommitEscape writes back the surviving pools after a successful flee.
func (s *HeroStore) CommitEscape(ctx context.Context, wb progression.DefeatWriteback) error {
	return s.update(ctx, func(h *progression.Hero) {
		h.HP = clampInt(wb.HP, 0, h.MaxHP)
		h.SP = clampInt(wb.SP, 0, h.MaxSP)
	})
}

// update loads the hero row under a row lock, applies fn, and writes the
// mutated fields back in the same transaction.
func (s *HeroStore) update(ctx context.Context, fn func(h *progression.Hero)) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	h, err := scanHero(tx.QueryRow(ctx,
		`SELECT `+heroColumns+` FROM heroes WHERE id = $1 FOR UPDATE`, s.heroID))
	if err != nil {
		return err
	}

	fn(&h)

	_, err = tx.Exec(ctx,
		`UPDATE heroes
		 SET level = $2, xp = $3, hp = $4, max_hp = $5, sp = $6, max_sp = $7,
		     attack = $8, defense = $9, speed = $10, loadout = $11,
		     kills = $12, win_streak = $13, dropless_streak = $14,
		     updated_at = NOW()
		 WHERE id = $1`,
		h.ID, h.Level, h.XP, h.HP, h.MaxHP, h.SP, h.MaxSP,
		h.Attack, h.Defense, h.Speed, h.Loadout, h.Kills, h.WinStreak, h.DroplessStreak,
	)
	if err != nil {
		return fmt.Errorf("updating hero: %w", err)
	}

	return tx.Commit(ctx)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
