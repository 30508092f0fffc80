package swing

import "github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"

// ExtractPivots collects every nonzero marker into an ordered pivot list.
// A peak takes the bar's high as its price, a trough the bar's low.
func ExtractPivots(markers []int, series model.Series) []model.Pivot {
	pivots := make([]model.Pivot, 0, 8)
	for i, m := range markers {
		if m == model.MarkerNone {
			continue
		}
		price := series[i].Low
		if m == model.MarkerPeak {
			price = series[i].High
		}
		pivots = append(pivots, model.Pivot{
			Loc:   i,
			Time:  series[i].Time,
			Type:  m,
			Price: price,
		})
	}
	return pivots
}
