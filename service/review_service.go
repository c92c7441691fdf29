package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/models"
)

const (
	ReasonUnknownPlayer   = "unknown_player"
	ReasonAmbiguousPlayer = "ambiguous_player"
	ReasonUnreadableScore = "unreadable_score"
)

type reviewService struct {
	uowFactory          UnitOfWorkFactory
	confidenceThreshold float64
}

// NewReviewService creates the OCR review step. Rows recognised with at
// least confidenceThreshold are marked verified.
func NewReviewService(uowFactory UnitOfWorkFactory, confidenceThreshold float64) ReviewService {
	return &reviewService{
		uowFactory:          uowFactory,
		confidenceThreshold: confidenceThreshold,
	}
}

// Review matches recognised names against player names and aliases and
// turns digit strings into scores. It writes nothing; matched rows are
// meant to be passed on to the score commit gate.
func (s *reviewService) Review(ctx context.Context, eventID int64, rows []models.OCRRow) ([]models.ReviewedRow, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.IsDeleted() {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}

	players, err := uow.PlayerRepository().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	index := newNameIndex(players)

	reviewed := make([]models.ReviewedRow, 0, len(rows))
	unmatched := 0
	for _, row := range rows {
		out := models.ReviewedRow{OCRRow: row, EventID: eventID}

		playerID, reason := index.lookup(row.Name)
		out.PlayerID = playerID
		out.Reason = reason

		score, ok := ParseOCRDigits(row.Digits)
		if ok {
			out.Score = score
			out.RawScore = score
		} else if out.Reason == "" {
			out.Reason = ReasonUnreadableScore
		}

		out.Verified = out.Reason == "" && row.Confidence >= s.confidenceThreshold
		if out.Reason != "" {
			unmatched++
		}
		reviewed = append(reviewed, out)
	}

	log.WithFields(log.Fields{
		"eventID":   eventID,
		"rows":      len(rows),
		"unmatched": unmatched,
	}).Info("Reviewed OCR rows")

	return reviewed, nil
}

// ParseOCRDigits strips thousands separators and whitespace from a
// recognised score. Anything else that is not a digit makes it unreadable.
func ParseOCRDigits(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '.' || r == '\'' || r == '_' || unicode.IsSpace(r):
		default:
			return decimal.Zero, false
		}
	}
	digits := b.String()
	if digits == "" || len(digits) > maxScoreDigits {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// nameIndex maps slugged names and aliases to player ids. A key claimed by
// more than one player resolves to nobody.
type nameIndex struct {
	ids       map[string]int64
	ambiguous map[string]bool
}

func newNameIndex(players []*models.Player) *nameIndex {
	idx := &nameIndex{
		ids:       make(map[string]int64),
		ambiguous: make(map[string]bool),
	}
	for _, p := range players {
		idx.add(p.Name, p.ID)
		for _, alias := range p.Aliases {
			idx.add(alias, p.ID)
		}
	}
	return idx
}

func (idx *nameIndex) add(name string, playerID int64) {
	key := slug.Make(name)
	if key == "" {
		return
	}
	if existing, ok := idx.ids[key]; ok && existing != playerID {
		idx.ambiguous[key] = true
		return
	}
	idx.ids[key] = playerID
}

func (idx *nameIndex) lookup(name string) (int64, string) {
	key := slug.Make(name)
	if key == "" {
		return 0, ReasonUnknownPlayer
	}
	if idx.ambiguous[key] {
		return 0, ReasonAmbiguousPlayer
	}
	id, ok := idx.ids[key]
	if !ok {
		return 0, ReasonUnknownPlayer
	}
	return id, ""
}
