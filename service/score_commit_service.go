package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/events"
	"medals/models"
)

var errMalformedRow = errors.New("malformed score row")

type scoreCommitService struct {
	uowFactory UnitOfWorkFactory
}

// NewScoreCommitService creates the score ingestion gate
func NewScoreCommitService(uowFactory UnitOfWorkFactory) ScoreCommitService {
	return &scoreCommitService{uowFactory: uowFactory}
}

// parsedScoreRow is a commit row that passed syntactic validation
type parsedScoreRow struct {
	eventID  int64
	playerID int64
	score    decimal.Decimal
	rawScore decimal.Decimal
	verified bool
	actor    string
}

// Commit upserts every valid row keyed by (event, player). Rows that fail
// to parse or reference a missing or deleted event or player are skipped
// and counted; the rest of the batch still commits.
func (s *scoreCommitService) Commit(ctx context.Context, rows []models.ScoreCommitRow) (*models.CommitResult, error) {
	result := &models.CommitResult{}
	if len(rows) == 0 {
		return result, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	liveEvents := make(map[int64]bool)
	livePlayers := make(map[int64]bool)
	touched := make(map[int64]struct{})

	for i, row := range rows {
		parsed, err := parseScoreRow(row)
		if err != nil {
			log.WithFields(log.Fields{
				"row":   i,
				"error": err,
			}).Warn("Skipping malformed score row")
			result.Skipped++
			continue
		}

		ok, err := s.referencesLive(ctx, uow, parsed, liveEvents, livePlayers)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.WithFields(log.Fields{
				"row":      i,
				"eventID":  parsed.eventID,
				"playerID": parsed.playerID,
			}).Warn("Skipping score row for missing or deleted event or player")
			result.Skipped++
			continue
		}

		score := &models.Score{
			EventID:   parsed.eventID,
			PlayerID:  parsed.playerID,
			Score:     parsed.score,
			RawScore:  parsed.rawScore,
			Verified:  parsed.verified,
			UpdatedBy: parsed.actor,
		}
		if err := uow.ScoreRepository().Upsert(ctx, score); err != nil {
			return nil, fmt.Errorf("failed to upsert score for event %d player %d: %w", parsed.eventID, parsed.playerID, err)
		}
		touched[parsed.eventID] = struct{}{}
		result.Committed++
	}

	if result.Committed > 0 {
		eventIDs := make([]int64, 0, len(touched))
		for id := range touched {
			eventIDs = append(eventIDs, id)
		}
		sort.Slice(eventIDs, func(i, j int) bool { return eventIDs[i] < eventIDs[j] })

		uow.EventBus().Publish(events.ScoresCommittedEvent{
			EventIDs:  eventIDs,
			Committed: result.Committed,
			Skipped:   result.Skipped,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scores: %w", err)
	}

	log.WithFields(log.Fields{
		"committed": result.Committed,
		"skipped":   result.Skipped,
	}).Info("Score batch committed")

	return result, nil
}

func (s *scoreCommitService) referencesLive(ctx context.Context, uow UnitOfWork, row *parsedScoreRow, liveEvents, livePlayers map[int64]bool) (bool, error) {
	eventOK, seen := liveEvents[row.eventID]
	if !seen {
		event, err := uow.EventRepository().GetByID(ctx, row.eventID)
		if err != nil {
			return false, fmt.Errorf("failed to get event %d: %w", row.eventID, err)
		}
		eventOK = event != nil && !event.IsDeleted()
		liveEvents[row.eventID] = eventOK
	}
	if !eventOK {
		return false, nil
	}

	playerOK, seen := livePlayers[row.playerID]
	if !seen {
		player, err := uow.PlayerRepository().GetByID(ctx, row.playerID)
		if err != nil {
			return false, fmt.Errorf("failed to get player %d: %w", row.playerID, err)
		}
		playerOK = player != nil && !player.IsDeleted()
		livePlayers[row.playerID] = playerOK
	}
	return playerOK, nil
}

func parseScoreRow(row models.ScoreCommitRow) (*parsedScoreRow, error) {
	eventID, err := parseID(row.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event_id: %v", errMalformedRow, err)
	}
	playerID, err := parseID(row.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: player_id: %v", errMalformedRow, err)
	}
	score, err := parseScoreValue(row.Score)
	if err != nil {
		return nil, fmt.Errorf("%w: score: %v", errMalformedRow, err)
	}

	rawScore := score
	if strings.TrimSpace(row.RawScore) != "" {
		rawScore, err = parseScoreValue(row.RawScore)
		if err != nil {
			return nil, fmt.Errorf("%w: raw_score: %v", errMalformedRow, err)
		}
	}

	actor := strings.TrimSpace(row.ActorID)
	if actor == "" {
		return nil, fmt.Errorf("%w: actor_id is empty", errMalformedRow)
	}

	return &parsedScoreRow{
		eventID:  eventID,
		playerID: playerID,
		score:    score,
		rawScore: rawScore,
		verified: row.Verified,
		actor:    actor,
	}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %d is not positive", id)
	}
	return id, nil
}
