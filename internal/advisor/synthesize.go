// Package advisor derives forecast-driven stocking and pricing advisories.
package advisor

import (
	"math"

	"github.com/shopspring/decimal"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

const (
	UrgentCoverDays    = 7.0
	SoonCoverDays      = 14.0
	UrgentBuffer       = 1.3
	SoonBuffer         = 1.2
	TrendWindow        = 7
	TrendThreshold     = 20.0
	GrowthBoost        = 0.3
	MaxDeclineDiscount = 25
	PeakRatio          = 1.5
	PeakBuffer         = 1.2
	StableCV           = 0.2
	StableMinAvg       = 5.0
	BulkOrderDays      = 45
	MinMarginPercent   = 20.0
	PriceIncreaseRate  = 0.10
)

// Synthesize returns every advisory that applies to the forecast. Rules are
// independent; the only exclusion is that an urgent reorder suppresses the
// plan-ahead reorder.
func Synthesize(p model.Product, forecast []model.ForecastPoint) []model.Advisory {
	if len(forecast) == 0 {
		return nil
	}
	demand := make([]float64, len(forecast))
	for i, f := range forecast {
		demand[i] = f.PredictedDemand
	}
	total := model.TotalDemand(forecast)
	avg := calculator.Mean(demand)

	var out []model.Advisory
	if a := reorder(p, total, avg); a != nil {
		out = append(out, a)
	}
	if a := trend(p, demand, total); a != nil {
		out = append(out, a)
	}
	if a := peak(forecast, avg); a != nil {
		out = append(out, a)
	}
	if avg > StableMinAvg && calculator.PopStdDev(demand)/avg < StableCV {
		out = append(out, model.StableDemand{AvgDemand: avg, BulkOrderQty: int(avg * BulkOrderDays)})
	}
	if a := margin(p, total); a != nil {
		out = append(out, a)
	}
	return out
}

func reorder(p model.Product, total, avg float64) model.Advisory {
	daysOfStock := math.Inf(1)
	if avg > 0 {
		daysOfStock = float64(p.CurrentQuantity) / avg
	}
	buy := decimal.NewFromFloat(p.PurchasePrice)
	switch {
	case daysOfStock < UrgentCoverDays:
		qty := int(total * UrgentBuffer)
		cost := buy.Mul(decimal.NewFromInt(int64(qty)))
		revenue := decimal.NewFromFloat(p.SellingPrice).Mul(decimal.NewFromInt(int64(qty)))
		return model.UrgentReorder{
			DaysOfStock:     daysOfStock,
			Quantity:        qty,
			Cost:            cost,
			ExpectedRevenue: revenue,
			ExpectedProfit:  revenue.Sub(cost),
		}
	case daysOfStock < SoonCoverDays:
		qty := int(total * SoonBuffer)
		return model.ReorderSoon{
			DaysOfStock: daysOfStock,
			Quantity:    qty,
			Cost:        buy.Mul(decimal.NewFromInt(int64(qty))),
		}
	}
	return nil
}

// TrendPercent compares the mean of the last week against the first, in percent.
// It is 0 when the first week has no demand.
func TrendPercent(demand []float64) float64 {
	if len(demand) == 0 {
		return 0
	}
	first := calculator.Mean(demand[:min(TrendWindow, len(demand))])
	last := calculator.Mean(demand[max(0, len(demand)-TrendWindow):])
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}

func trend(p model.Product, demand []float64, total float64) model.Advisory {
	t := TrendPercent(demand)
	switch {
	case t > TrendThreshold:
		extra := int(total * GrowthBoost)
		return model.IncreasingDemand{
			TrendPercent:       t,
			ExtraQuantity:      extra,
			RevenueOpportunity: decimal.NewFromFloat(p.SellingPrice).Mul(decimal.NewFromInt(int64(extra))),
		}
	case t < -TrendThreshold:
		return model.DecreasingDemand{
			TrendPercent:    t,
			DiscountPercent: min(MaxDeclineDiscount, int(math.Abs(t)/2)),
		}
	}
	return nil
}

func peak(forecast []model.ForecastPoint, avg float64) model.Advisory {
	top := forecast[0]
	for _, f := range forecast[1:] {
		if f.PredictedDemand > top.PredictedDemand {
			top = f
		}
	}
	if top.PredictedDemand <= avg*PeakRatio {
		return nil
	}
	return model.PeakWarning{
		PeakDemand: top.PredictedDemand,
		PeakDate:   top.Date,
		AvgDemand:  avg,
		BufferQty:  int(top.PredictedDemand * PeakBuffer),
	}
}

// Skipped for non-positive selling prices, where margin is undefined.
func margin(p model.Product, total float64) model.Advisory {
	if p.SellingPrice <= 0 {
		return nil
	}
	sell := decimal.NewFromFloat(p.SellingPrice)
	profit := sell.Sub(decimal.NewFromFloat(p.PurchasePrice))
	pct := (p.SellingPrice - p.PurchasePrice) / p.SellingPrice * 100
	if pct >= MinMarginPercent {
		return nil
	}
	return model.MarginWarning{
		MarginPercent: pct,
		ProfitPerUnit: profit,
		HorizonProfit: profit.Mul(decimal.NewFromFloat(total)),
		PriceIncrease: sell.Mul(decimal.NewFromFloat(PriceIncreaseRate)),
	}
}
