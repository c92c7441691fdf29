package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals/models"
)

func TestParseOCRDigits(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"1,234,567", 1234567, true},
		{"1.234.567", 1234567, true},
		{"1 234", 1234, true},
		{"1'234", 1234, true},
		{"0", 0, true},
		{"12a4", 0, false},
		{"", 0, false},
		{", ,", 0, false},
		{"-12", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseOCRDigits(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.IntPart())
			}
		})
	}
}

func TestReviewService_Review(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, false)

	uow.Events.On("GetByID", ctx, int64(4)).Return(&models.Event{ID: 4}, nil)
	uow.Players.On("ListActive", ctx).Return([]*models.Player{
		{ID: 1, Name: "Aragorn", Aliases: []string{"Strider"}},
		{ID: 2, Name: "Legolas"},
		{ID: 3, Name: "Gimli", Aliases: []string{"legolas"}},
		{ID: 5, Name: "Sam Gamgee"},
	}, nil)

	svc := NewReviewService(factory, 0.8)
	reviewed, err := svc.Review(ctx, 4, []models.OCRRow{
		{Name: "STRIDER", Digits: "1,234", Confidence: 0.95},
		{Name: "Legolas", Digits: "10", Confidence: 0.99},
		{Name: "Boromir", Digits: "10", Confidence: 0.99},
		{Name: "Aragorn", Digits: "12a", Confidence: 0.99},
		{Name: "aragorn", Digits: "900", Confidence: 0.5},
		{Name: "sam  gamgee", Digits: "77", Confidence: 0.8},
	})
	require.NoError(t, err)
	require.Len(t, reviewed, 6)

	assert.Equal(t, int64(1), reviewed[0].PlayerID)
	assert.Equal(t, int64(1234), reviewed[0].Score.IntPart())
	assert.True(t, reviewed[0].Verified)
	assert.Empty(t, reviewed[0].Reason)

	assert.Equal(t, int64(0), reviewed[1].PlayerID)
	assert.Equal(t, ReasonAmbiguousPlayer, reviewed[1].Reason)
	assert.False(t, reviewed[1].Verified)

	assert.Equal(t, ReasonUnknownPlayer, reviewed[2].Reason)

	assert.Equal(t, int64(1), reviewed[3].PlayerID)
	assert.Equal(t, ReasonUnreadableScore, reviewed[3].Reason)
	assert.False(t, reviewed[3].Verified)

	assert.Equal(t, int64(1), reviewed[4].PlayerID)
	assert.Empty(t, reviewed[4].Reason)
	assert.False(t, reviewed[4].Verified, "low confidence rows stay unverified")

	assert.Equal(t, int64(5), reviewed[5].PlayerID)
	assert.True(t, reviewed[5].Verified)

	commit := reviewed[0].CommitRow("reviewer")
	assert.Equal(t, models.ScoreCommitRow{
		EventID:  "4",
		PlayerID: "1",
		Score:    "1234",
		RawScore: "1234",
		Verified: true,
		ActorID:  "reviewer",
	}, commit)
	uow.AssertAll(t)
}

func TestReviewService_UnknownEvent(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, false)
	uow.Events.On("GetByID", ctx, int64(4)).Return(nil, nil)

	svc := NewReviewService(factory, 0.8)
	_, err := svc.Review(ctx, 4, []models.OCRRow{{Name: "x", Digits: "1"}})

	assert.ErrorIs(t, err, ErrNotFound)
}
