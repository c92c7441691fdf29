package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"medals/models"
)

type rosterService struct {
	uowFactory UnitOfWorkFactory
	clock      clockwork.Clock
}

// NewRosterService creates a service managing players, events and medals
func NewRosterService(uowFactory UnitOfWorkFactory, clock clockwork.Clock) RosterService {
	return &rosterService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (s *rosterService) CreatePlayer(ctx context.Context, name string, aliases []string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	cleaned := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias = strings.TrimSpace(alias); alias != "" {
			cleaned = append(cleaned, alias)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player := &models.Player{
		Name:    name,
		Aliases: cleaned,
		Status:  models.PlayerStatusActive,
	}
	if err := uow.PlayerRepository().Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit player: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": player.ID,
		"name":     player.Name,
	}).Info("Player created")

	return player, nil
}

func (s *rosterService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// LinkAlt makes altID an alt of mainID, or a main again when mainID is nil.
// Links are one level deep: a main cannot be an alt and an alt cannot
// have alts of its own.
func (s *rosterService) LinkAlt(ctx context.Context, altID int64, mainID *int64) (*models.Player, error) {
	if mainID != nil && *mainID == altID {
		return nil, fmt.Errorf("%w: player %d cannot be its own main", ErrInvalidInput, altID)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players := uow.PlayerRepository()
	alt, err := players.GetByID(ctx, altID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if alt == nil || alt.IsDeleted() {
		return nil, fmt.Errorf("player %d: %w", altID, ErrNotFound)
	}

	if mainID != nil {
		main, err := players.GetByID(ctx, *mainID)
		if err != nil {
			return nil, fmt.Errorf("failed to get main player: %w", err)
		}
		if main == nil || main.IsDeleted() {
			return nil, fmt.Errorf("main player %d: %w", *mainID, ErrNotFound)
		}
		if main.IsAlt {
			return nil, fmt.Errorf("%w: player %d is itself an alt", ErrInvalidInput, *mainID)
		}

		alts, err := players.ListAlts(ctx, altID)
		if err != nil {
			return nil, fmt.Errorf("failed to list alts: %w", err)
		}
		if len(alts) > 0 {
			return nil, fmt.Errorf("%w: player %d has %d alts of its own", ErrInvalidInput, altID, len(alts))
		}
	}

	if err := players.SetMain(ctx, altID, mainID); err != nil {
		return nil, fmt.Errorf("failed to link player: %w", err)
	}
	alt.IsAlt = mainID != nil
	alt.MainPlayerID = mainID

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit player link: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": altID,
		"mainID":   mainID,
	}).Info("Player alt link updated")

	return alt, nil
}

// SoftDeletePlayer hides a player from the roster and from future
// aggregation. Ledger history is untouched.
func (s *rosterService) SoftDeletePlayer(ctx context.Context, playerID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil || player.IsDeleted() {
		return fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}

	if err := uow.PlayerRepository().SoftDelete(ctx, playerID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit player deletion: %w", err)
	}

	log.WithField("playerID", playerID).Info("Player soft-deleted")
	return nil
}

func (s *rosterService) CreateEvent(ctx context.Context, name string, date time.Time) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.clock.Now()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event := &models.Event{
		Name:      name,
		EventDate: date.UTC().Truncate(24 * time.Hour),
	}
	if err := uow.EventRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID": event.ID,
		"name":    event.Name,
	}).Info("Event created")

	return event, nil
}

func (s *rosterService) SoftDeleteEvent(ctx context.Context, eventID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.IsDeleted() {
		return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}

	if err := uow.EventRepository().SoftDelete(ctx, eventID, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}

	log.WithField("eventID", eventID).Info("Event soft-deleted")
	return nil
}

func (s *rosterService) CreateMedal(ctx context.Context, name string, value int64) (*models.Medal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: medal name is required", ErrInvalidInput)
	}
	if value < 0 {
		return nil, fmt.Errorf("%w: medal value cannot be negative", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	medal := &models.Medal{Name: name, Value: value}
	if err := uow.MedalRepository().Create(ctx, medal); err != nil {
		return nil, fmt.Errorf("failed to create medal: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit medal: %w", err)
	}

	log.WithFields(log.Fields{
		"medalID": medal.ID,
		"name":    medal.Name,
	}).Info("Medal created")

	return medal, nil
}
