package pricing

import (
	"fmt"

	"hotel_rates/internal/domain"
)

// MaxCombinationEntries bounds the size of a generated table. The child part
// grows as groups^n, so limits must be checked before anything is built.
const MaxCombinationEntries = 2000

// CountCombinations returns how many entries GenerateCombinationTable would
// emit, saturating at MaxCombinationEntries+1.
func CountCombinations(occ domain.Occupancy, groups []domain.AgeGroup) int {
	if len(groups) == 0 {
		groups = domain.DefaultChildAgeGroups
	}
	g := len(groups)
	total := 0
	for adults := max(occ.MinAdults, 1); adults <= occ.MaxAdults; adults++ {
		total++
		if adults < occ.MaxAdults {
			seqs := 1
			for n := 1; n <= min(occ.MaxChildren, occ.TotalMaxGuests-adults, maxChildOrder); n++ {
				seqs *= g
				total += seqs
				if total > MaxCombinationEntries {
					return MaxCombinationEntries + 1
				}
			}
		}
		if total > MaxCombinationEntries {
			return MaxCombinationEntries + 1
		}
	}
	return total
}

// GenerateCombinationTable enumerates every sellable (adults, children) tuple
// of a room. Children are only added while adults < maxAdults and are bounded
// by min(maxChildren, totalMaxGuests-adults). Nil multiplier maps fall back to
// the default curve and free children. Limits whose table would exceed
// MaxCombinationEntries fail with ErrInvalidOccupancy.
func GenerateCombinationTable(occ domain.Occupancy, groups []domain.AgeGroup, adultMult map[int]float64, childMult map[int]map[string]float64) ([]domain.CombinationEntry, error) {
	if len(groups) == 0 {
		groups = domain.DefaultChildAgeGroups
	}
	size := CountCombinations(occ, groups)
	if size > MaxCombinationEntries {
		return nil, fmt.Errorf("%w: occupancy limits yield more than %d combinations", domain.ErrInvalidOccupancy, MaxCombinationEntries)
	}
	codes := groupCodes(groups)
	minAdults := max(occ.MinAdults, 1)

	out := make([]domain.CombinationEntry, 0, size)
	for adults := minAdults; adults <= occ.MaxAdults; adults++ {
		out = append(out, newEntry(adults, nil, occ.BaseOccupancy, adultMult, childMult))
		if adults >= occ.MaxAdults {
			continue
		}
		limit := min(occ.MaxChildren, occ.TotalMaxGuests-adults, maxChildOrder)
		for n := 1; n <= limit; n++ {
			for _, kids := range childSequences(codes, n) {
				out = append(out, newEntry(adults, kids, occ.BaseOccupancy, adultMult, childMult))
			}
		}
	}
	return out, nil
}

// RecalculateCombinationTable refreshes calculatedMultiplier for every
// existing key from new multiplier maps. Overrides and isActive are kept;
// entries whose adult count has no factor in adultMult are left untouched.
func RecalculateCombinationTable(existing []domain.CombinationEntry, adultMult map[int]float64, childMult map[int]map[string]float64) []domain.CombinationEntry {
	out := make([]domain.CombinationEntry, len(existing))
	for i, e := range existing {
		next := e
		next.Children = append([]domain.ChildSlot(nil), e.Children...)
		if e.OverrideMultiplier != nil {
			v := *e.OverrideMultiplier
			next.OverrideMultiplier = &v
		}
		if a, ok := adultMult[e.Adults]; ok {
			m := a
			for _, c := range e.Children {
				m += childMult[c.Order][c.AgeGroup]
			}
			next.CalculatedMultiplier = round4(m)
		}
		out[i] = next
	}
	return out
}

func newEntry(adults int, kids []domain.ChildSlot, base int, adultMult map[int]float64, childMult map[int]map[string]float64) domain.CombinationEntry {
	return domain.CombinationEntry{
		Key:                  CombinationKey(adults, kids),
		Adults:               adults,
		Children:             kids,
		CalculatedMultiplier: AnalyticMultiplier(adults, kids, adultMult, childMult, base),
		IsActive:             true,
	}
}

// childSequences returns the ordered Cartesian product codes^n as child slots.
func childSequences(codes []string, n int) [][]domain.ChildSlot {
	if n == 0 {
		return [][]domain.ChildSlot{nil}
	}
	var out [][]domain.ChildSlot
	for _, prefix := range childSequences(codes, n-1) {
		for _, code := range codes {
			seq := make([]domain.ChildSlot, 0, n)
			seq = append(seq, prefix...)
			seq = append(seq, domain.ChildSlot{Order: n, AgeGroup: code})
			out = append(out, seq)
		}
	}
	return out
}
