package scoring

import (
	"sort"

	"github.com/kayaan/driver-gtm/internal/dat"
)

// RankedLoad is a load with its full scoring breakdown attached.
type RankedLoad struct {
	Load      *dat.Load
	Profit    ProfitData
	Market    MarketScores
	Composite CompositeScore
}

// Rank scores every load and orders them best-first. Ties on score break on
// higher revenue, then on shorter total distance; the sort is stable so loads
// equal on all three keep their incoming order.
func Rank(params Params, loads []*dat.Load, signals map[string]*dat.MarketSignal) []*RankedLoad {
	ranked := make([]*RankedLoad, 0, len(loads))

	for _, load := range loads {
		profit := ProfitFor(params, load)
		market := MarketFor(params, signals[load.DestinationState()])

		ranked = append(ranked, &RankedLoad{
			Load:      load,
			Profit:    profit,
			Market:    market,
			Composite: Composite(params, profit, market),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Composite.Score != b.Composite.Score {
			return a.Composite.Score > b.Composite.Score
		}
		if a.Profit.Revenue != b.Profit.Revenue {
			return a.Profit.Revenue > b.Profit.Revenue
		}
		return a.Load.TotalMiles() < b.Load.TotalMiles()
	})

	return ranked
}
