package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"medals/models"
)

const (
	// MaxWaterFillRounds bounds the reallocation loop
	MaxWaterFillRounds = 10
)

// DistributionCapRatio is the largest fraction of the remaining pot one
// player may receive in a single run.
var DistributionCapRatio = decimal.New(1, -1)

// AllocationPlan is the result of splitting a pot across aggregated scores
type AllocationPlan struct {
	Remaining       decimal.Decimal
	Cap             decimal.Decimal
	Allocations     []models.Allocation // ordered by player id
	Total           decimal.Decimal
	Leftover        decimal.Decimal
	CappedPlayers   int
	WaterFillRounds int
}

// Recipients counts players with a non-zero share
func (p *AllocationPlan) Recipients() int {
	n := 0
	for _, a := range p.Allocations {
		if a.Amount.IsPositive() {
			n++
		}
	}
	return n
}

type allocationEntry struct {
	playerID int64
	score    decimal.Decimal
	raw      decimal.Decimal
	share    decimal.Decimal
	// frac is the remainder of score*remaining/sum kept as a numerator over
	// the shared denominator, so entries compare exactly.
	frac   decimal.Decimal
	capped bool
}

// DistributionCap returns floor(remaining * 10%)
func DistributionCap(remaining decimal.Decimal) decimal.Decimal {
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return remaining.Mul(DistributionCapRatio).Floor()
}

// Allocate splits remaining across scores proportionally, capping every
// share at DistributionCap(remaining).
func Allocate(scores map[int64]decimal.Decimal, remaining decimal.Decimal) (*AllocationPlan, error) {
	return AllocateWithCap(scores, remaining, DistributionCap(remaining))
}

// AllocateWithCap is Allocate with an explicit per-player cap.
//
// Shares start as floor(score*remaining/sum) limited to the cap. Leftover is
// then spread over players that still have headroom below both the cap and
// their raw share, for at most MaxWaterFillRounds rounds. Whatever is left
// is handed out one unit at a time by largest remainder, ties going to the
// larger score and then the lower player id.
func AllocateWithCap(scores map[int64]decimal.Decimal, remaining, cap decimal.Decimal) (*AllocationPlan, error) {
	if !remaining.IsInteger() || !cap.IsInteger() {
		return nil, fmt.Errorf("%w: remaining %s and cap %s must be whole units", ErrInvalidInput, remaining, cap)
	}
	if cap.IsNegative() {
		return nil, fmt.Errorf("%w: negative cap %s", ErrInvalidInput, cap)
	}

	plan := &AllocationPlan{
		Remaining: remaining,
		Cap:       cap,
		Total:     decimal.Zero,
		Leftover:  decimal.Zero,
	}
	if !remaining.IsPositive() {
		plan.Leftover = remaining
		return plan, nil
	}

	entries, sum, err := buildEntries(scores)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		plan.Leftover = remaining
		return plan, nil
	}

	initialShares(entries, sum, remaining, cap)
	plan.WaterFillRounds = waterFill(entries, remaining, cap)
	finishLargestRemainder(entries, remaining.Sub(totalShares(entries)), cap)

	plan.Total = totalShares(entries)
	plan.Leftover = remaining.Sub(plan.Total)
	plan.Allocations = make([]models.Allocation, 0, len(entries))
	for _, e := range entries {
		if e.capped {
			plan.CappedPlayers++
		}
		plan.Allocations = append(plan.Allocations, models.Allocation{
			PlayerID: e.playerID,
			Amount:   e.share,
			Capped:   e.capped,
		})
	}
	sort.Slice(plan.Allocations, func(i, j int) bool {
		return plan.Allocations[i].PlayerID < plan.Allocations[j].PlayerID
	})

	if err := plan.verify(); err != nil {
		return nil, err
	}
	return plan, nil
}

// buildEntries drops zero scores, which carry no proportional weight
func buildEntries(scores map[int64]decimal.Decimal) ([]*allocationEntry, decimal.Decimal, error) {
	entries := make([]*allocationEntry, 0, len(scores))
	sum := decimal.Zero
	for playerID, score := range scores {
		if score.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: negative score %s for player %d", ErrInvalidInput, score, playerID)
		}
		if score.IsZero() {
			continue
		}
		entries = append(entries, &allocationEntry{playerID: playerID, score: score})
		sum = sum.Add(score)
	}
	return entries, sum, nil
}

func initialShares(entries []*allocationEntry, sum, remaining, cap decimal.Decimal) {
	for _, e := range entries {
		raw, rem := e.score.Mul(remaining).QuoRem(sum, 0)
		e.raw = raw
		if raw.GreaterThan(cap) {
			e.share = cap
			e.capped = true
			e.frac = decimal.Zero
			continue
		}
		e.share = raw
		e.frac = rem
		if cap.IsPositive() && raw.Equal(cap) {
			e.capped = true
		}
	}
}

// waterFill returns the number of rounds that moved any amount
func waterFill(entries []*allocationEntry, remaining, cap decimal.Decimal) int {
	rounds := 0
	for round := 0; round < MaxWaterFillRounds; round++ {
		leftover := remaining.Sub(totalShares(entries))
		if !leftover.IsPositive() {
			break
		}

		headroom := make(map[*allocationEntry]decimal.Decimal)
		totalHeadroom := decimal.Zero
		for _, e := range entries {
			if !e.share.LessThan(cap) || !e.share.LessThan(e.raw) {
				continue
			}
			h := decimal.Min(cap.Sub(e.share), e.raw.Sub(e.share))
			headroom[e] = h
			totalHeadroom = totalHeadroom.Add(h)
		}
		if totalHeadroom.IsZero() {
			break
		}

		moved := decimal.Zero
		for e, h := range headroom {
			delta, _ := leftover.Mul(h).QuoRem(totalHeadroom, 0)
			delta = decimal.Min(delta, cap.Sub(e.share))
			if !delta.IsPositive() {
				continue
			}
			e.share = e.share.Add(delta)
			if e.share.Equal(cap) {
				e.capped = true
			}
			moved = moved.Add(delta)
		}
		if moved.IsZero() {
			break
		}
		rounds++
	}
	return rounds
}

// finishLargestRemainder hands out leftover one unit at a time to the
// under-cap player with the largest remainder. Once every remainder is
// spent the pick order is fixed, so the rest is granted in bulk.
func finishLargestRemainder(entries []*allocationEntry, leftover, cap decimal.Decimal) {
	if !leftover.IsPositive() {
		return
	}

	byRemainder := make([]*allocationEntry, 0, len(entries))
	for _, e := range entries {
		if e.share.LessThan(cap) && e.frac.IsPositive() {
			byRemainder = append(byRemainder, e)
		}
	}
	sort.Slice(byRemainder, func(i, j int) bool {
		a, b := byRemainder[i], byRemainder[j]
		if c := a.frac.Cmp(b.frac); c != 0 {
			return c > 0
		}
		return byScoreThenID(a, b)
	})

	one := decimal.NewFromInt(1)
	for _, e := range byRemainder {
		if !leftover.IsPositive() {
			return
		}
		e.share = e.share.Add(one)
		e.frac = decimal.Zero
		if e.share.Equal(cap) {
			e.capped = true
		}
		leftover = leftover.Sub(one)
	}

	underCap := make([]*allocationEntry, 0, len(entries))
	for _, e := range entries {
		if e.share.LessThan(cap) {
			underCap = append(underCap, e)
		}
	}
	sort.Slice(underCap, func(i, j int) bool {
		return byScoreThenID(underCap[i], underCap[j])
	})

	for _, e := range underCap {
		if !leftover.IsPositive() {
			return
		}
		grant := decimal.Min(cap.Sub(e.share), leftover)
		e.share = e.share.Add(grant)
		e.frac = decimal.Zero
		if e.share.Equal(cap) {
			e.capped = true
		}
		leftover = leftover.Sub(grant)
	}
}

func byScoreThenID(a, b *allocationEntry) bool {
	if c := a.score.Cmp(b.score); c != 0 {
		return c > 0
	}
	return a.playerID < b.playerID
}

func totalShares(entries []*allocationEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.share)
	}
	return total
}

// verify never clamps: an overspend here is a bug in the allocation above
func (p *AllocationPlan) verify() error {
	if p.Total.GreaterThan(p.Remaining) {
		return fmt.Errorf("%w: allocated %s exceeds remaining %s", ErrInvariantViolation, p.Total, p.Remaining)
	}
	for _, a := range p.Allocations {
		if a.Amount.IsNegative() || a.Amount.GreaterThan(p.Cap) {
			return fmt.Errorf("%w: player %d share %s outside [0, %s]", ErrInvariantViolation, a.PlayerID, a.Amount, p.Cap)
		}
	}
	return nil
}
