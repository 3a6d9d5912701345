package pricing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"hotel_rates/internal/domain"
)

const (
	MinMultiplier = 0.0
	MaxMultiplier = 5.0

	maxAdultKey   = domain.MaxOccupancyPricingAdults
	maxChildOrder = 10

	// defaultAdultStep is the per-adult delta from base occupancy.
	defaultAdultStep = 0.2
	baselineAdults   = 2
)

// BaselineKey is the 2-adult, no-children combination that anchors OBP pricing.
var BaselineKey = CombinationKey(baselineAdults, nil)

// CombinationKey encodes adults plus children in arrival order, e.g. "2+infant+child".
func CombinationKey(adults int, children []domain.ChildSlot) string {
	slots := append([]domain.ChildSlot(nil), children...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Order < slots[j].Order })
	var b strings.Builder
	b.WriteString(strconv.Itoa(adults))
	for _, c := range slots {
		b.WriteByte('+')
		b.WriteString(c.AgeGroup)
	}
	return b.String()
}

// DefaultAdultMultiplier is 1.0 at base occupancy, +/-0.2 per adult away from it.
func DefaultAdultMultiplier(adults, base int) float64 {
	m := 1 + defaultAdultStep*float64(adults-base)
	if m < MinMultiplier {
		m = MinMultiplier
	}
	return round4(m)
}

// AnalyticMultiplier sums the adult factor and every child's (order, group)
// factor. Missing adult factors fall back to the default curve, missing child
// factors count as zero.
func AnalyticMultiplier(adults int, children []domain.ChildSlot, adultMult map[int]float64, childMult map[int]map[string]float64, base int) float64 {
	m, ok := adultMult[adults]
	if !ok {
		m = DefaultAdultMultiplier(adults, base)
	}
	for _, c := range children {
		m += childMult[c.Order][c.AgeGroup]
	}
	return round4(m)
}

// ApplyRounding rounds a price according to rule. Unknown rules behave like none.
func ApplyRounding(v float64, rule domain.RoundingRule) float64 {
	switch rule {
	case domain.RoundNearest:
		return math.Round(v)
	case domain.RoundUp:
		return math.Ceil(round2(v))
	case domain.RoundDown:
		return math.Floor(round2(v))
	case domain.RoundNearest5:
		return math.Round(v/5) * 5
	case domain.RoundNearest10:
		return math.Round(v/10) * 10
	default:
		return round2(v)
	}
}

// ValidateTemplate checks key ranges and factor bounds of a template. When
// occ is given, the baseline entry must stay active if minAdults <= 2.
func ValidateTemplate(t *domain.MultiplierTemplate, occ *domain.Occupancy) error {
	if t == nil {
		return nil
	}
	for adults, f := range t.AdultMultipliers {
		if adults < 1 || adults > maxAdultKey {
			return fmt.Errorf("%w: adult key %d outside 1..%d", domain.ErrInvalidMultiplier, adults, maxAdultKey)
		}
		if err := checkFactor(f); err != nil {
			return fmt.Errorf("adult %d: %w", adults, err)
		}
	}
	for order, byGroup := range t.ChildMultipliers {
		if order < 1 || order > maxChildOrder {
			return fmt.Errorf("%w: child order %d outside 1..%d", domain.ErrInvalidMultiplier, order, maxChildOrder)
		}
		for group, f := range byGroup {
			if group == "" {
				return fmt.Errorf("%w: empty age group for child %d", domain.ErrInvalidMultiplier, order)
			}
			if err := checkFactor(f); err != nil {
				return fmt.Errorf("child %d/%s: %w", order, group, err)
			}
		}
	}
	switch t.RoundingRule {
	case "", domain.RoundNone, domain.RoundNearest, domain.RoundUp, domain.RoundDown, domain.RoundNearest5, domain.RoundNearest10:
	default:
		return fmt.Errorf("%w: unknown rounding rule %q", domain.ErrInvalidMultiplier, t.RoundingRule)
	}
	for _, e := range t.CombinationTable {
		if err := checkFactor(e.CalculatedMultiplier); err != nil {
			return fmt.Errorf("combination %s: %w", e.Key, err)
		}
		if e.OverrideMultiplier != nil {
			if err := checkFactor(*e.OverrideMultiplier); err != nil {
				return fmt.Errorf("combination %s override: %w", e.Key, err)
			}
		}
	}
	if occ != nil && occ.MinAdults <= baselineAdults {
		if e, ok := t.Lookup(BaselineKey); ok && !e.IsActive {
			return fmt.Errorf("%w: baseline combination %s must stay active", domain.ErrInvalidMultiplier, BaselineKey)
		}
	}
	return nil
}

func checkFactor(f float64) error {
	if math.IsNaN(f) || f < MinMultiplier || f > MaxMultiplier {
		return fmt.Errorf("%w: factor %v outside %v..%v", domain.ErrInvalidMultiplier, f, MinMultiplier, MaxMultiplier)
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
