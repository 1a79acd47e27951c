package state

import (
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
)

// Factory builds fresh GameStates from a content catalog.
type Factory struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithClock overrides the time source used to stamp LastSaved.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) { f.now = now }
}

// NewFactory creates a Factory.
//
// Precondition: cat must be a validated catalog and logger must not be nil.
func NewFactory(cat *catalog.Catalog, logger *zap.Logger, opts ...FactoryOption) *Factory {
	f := &Factory{
		catalog: cat,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Catalog returns the catalog the factory builds from.
func (f *Factory) Catalog() *catalog.Catalog { return f.catalog }

// Build constructs a fresh GameState positioned at the start of levelID.
// An unknown levelID logs a warning and falls back to the catalog's default
// level.
//
// Postcondition: the returned state shares no mutable container with the
// catalog or with any previously built state.
func (f *Factory) Build(levelID string) *GameState {
	game := f.catalog.Game()
	lvl, err := f.catalog.Level(levelID)
	if err != nil {
		f.logger.Warn("unknown level, falling back to default",
			zap.String("level_id", levelID),
			zap.String("default_level_id", game.DefaultLevelID),
		)
		levelID = game.DefaultLevelID
		lvl, err = f.catalog.Level(levelID)
		if err != nil {
			// Catalog validation guarantees the default level exists.
			panic("state: default level missing from validated catalog")
		}
	}

	player := f.catalog.Player()

	return &GameState{
		Level:               lvl.Clone(),
		CurrentLevelID:      lvl.ID,
		Levels:              map[string]catalog.Level{lvl.ID: lvl.Clone()},
		Items:               catalog.CloneItems(lvl.Items),
		Objects:             catalog.CloneObjects(lvl.Objects),
		GreatPowers:         catalog.CloneGreatPowers(lvl.GreatPowers),
		NonCollisionObjects: catalog.CloneObjects(lvl.NonCollisionObjects),
		Monsters:            catalog.CloneMonsters(lvl.Monsters),
		GridWidth:           game.GridWidth,
		GridHeight:          game.GridHeight,

		Player: player,

		ActiveMonsters:  []catalog.Monster{},
		AttackSlots:     []catalog.Monster{},
		WaitingMonsters: []catalog.Monster{},
		TurnOrder:       []string{},
		CombatLog:       []CombatLogEntry{},
		MaxAttackers:    game.MaxAttackers,

		ActiveProjectiles:     []Projectile{},
		ActiveTeleportFlashes: []TeleportFlash{},

		Weapons:              f.catalog.Weapons(),
		SaveVersion:          game.SaveVersion,
		LastSaved:            f.now().UTC(),
		SubGamesCompleted:    map[string]bool{},
		WaypointSavesCreated: map[string]bool{},
	}
}
