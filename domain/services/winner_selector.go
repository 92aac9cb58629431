package services

import (
	"context"
	"fmt"
	"sort"

	"plushiebot/domain/entities"
	"plushiebot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// WinnerRules are the anti-abuse limits applied during selection
type WinnerRules struct {
	BlockedUserIDs []int64
	WinCap         int
	MaxTiers       int
}

// WinnerSelector picks the day's winners from the aggregated drop counts
type WinnerSelector struct {
	winnerRepo interfaces.WinnerRepository
	rules      WinnerRules
	blocked    map[int64]struct{}
}

// NewWinnerSelector creates a selector
func NewWinnerSelector(winnerRepo interfaces.WinnerRepository, rules WinnerRules) *WinnerSelector {
	if rules.WinCap <= 0 {
		rules.WinCap = 2
	}
	if rules.MaxTiers <= 0 {
		rules.MaxTiers = 5
	}
	blocked := make(map[int64]struct{}, len(rules.BlockedUserIDs))
	for _, id := range rules.BlockedUserIDs {
		blocked[id] = struct{}{}
	}
	return &WinnerSelector{
		winnerRepo: winnerRepo,
		rules:      rules,
		blocked:    blocked,
	}
}

// Select walks the distinct count tiers from the top. The first tier with
// any user left after the block list and win cap wins as a whole.
func (s *WinnerSelector) Select(ctx context.Context, rows []entities.DropCount) (entities.Selection, error) {
	state := entities.SelectionAggregating
	if len(rows) == 0 {
		return s.transition(state, entities.Selection{State: entities.SelectionNoneEligible}), nil
	}

	tiers := groupTiers(rows)
	state = entities.SelectionSelectingWinners

	userIDs := make([]int64, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.UserID)
	}
	wins, err := s.winnerRepo.CountWins(ctx, userIDs)
	if err != nil {
		return entities.Selection{}, fmt.Errorf("failed to count previous wins: %w", err)
	}

	var skipped []int64
	for i, tier := range tiers {
		if i >= s.rules.MaxTiers {
			break
		}
		var chosen []entities.DropCount
		for _, row := range tier {
			if _, isBlocked := s.blocked[row.UserID]; isBlocked {
				skipped = append(skipped, row.UserID)
				continue
			}
			if wins[row.UserID] >= s.rules.WinCap {
				skipped = append(skipped, row.UserID)
				continue
			}
			chosen = append(chosen, row)
		}
		if len(chosen) > 0 {
			return s.transition(state, entities.Selection{
				State:   entities.SelectionWinnersChosen,
				Winners: chosen,
				Tier:    i,
				Skipped: skipped,
			}), nil
		}
	}

	return s.transition(state, entities.Selection{
		State:   entities.SelectionNoneEligible,
		Skipped: skipped,
	}), nil
}

func (s *WinnerSelector) transition(from entities.SelectionState, sel entities.Selection) entities.Selection {
	log.WithFields(log.Fields{
		"from":    from,
		"to":      sel.State,
		"winners": len(sel.Winners),
		"tier":    sel.Tier,
		"skipped": len(sel.Skipped),
	}).Debug("Winner selection finished")
	return sel
}

// groupTiers splits rows into groups of equal count, highest first
func groupTiers(rows []entities.DropCount) [][]entities.DropCount {
	byCount := make(map[int64][]entities.DropCount)
	var counts []int64
	for _, r := range rows {
		if _, seen := byCount[r.Count]; !seen {
			counts = append(counts, r.Count)
		}
		byCount[r.Count] = append(byCount[r.Count], r)
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i] > counts[j] })

	tiers := make([][]entities.DropCount, 0, len(counts))
	for _, c := range counts {
		tiers = append(tiers, byCount[c])
	}
	return tiers
}
