package history

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/khtseng/folio/internal/models"
)

// renderGrowthChart renders a PNG line chart from history points.
// Two series: Portfolio Value (blue solid) and Total Cost (gray dashed).
func renderGrowthChart(points []*models.PricePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	valueY := make([]float64, len(points))
	costY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = p.Date
		valueY[i] = p.TotalValue
		costY[i] = p.TotalCost
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Total Cost",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	graph := chart.Chart{
		Title:  "Portfolio Growth",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			costSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// typeLabels maps asset types to chart labels.
var typeLabels = map[models.AssetType]string{
	models.AssetStockTW: "TW Stocks",
	models.AssetStockUS: "US Stocks",
	models.AssetCrypto:  "Crypto",
	models.AssetCash:    "Cash",
	models.AssetDeFi:    "DeFi",
	models.AssetWallet:  "Wallets",
}

// typeOrder fixes slice ordering so repeated renders are stable.
var typeOrder = []models.AssetType{
	models.AssetStockTW,
	models.AssetStockUS,
	models.AssetCrypto,
	models.AssetCash,
	models.AssetDeFi,
	models.AssetWallet,
}

// renderAllocationChart renders market value grouped by asset type as a
// PNG donut chart. Types with no value are omitted.
func renderAllocationChart(assets []*models.Asset) ([]byte, error) {
	totals := make(map[models.AssetType]float64)
	for _, a := range assets {
		if a.MarketValue > 0 {
			totals[a.Type] += a.MarketValue
		}
	}

	var values []chart.Value
	for _, t := range typeOrder {
		if total, ok := totals[t]; ok {
			values = append(values, chart.Value{
				Label: fmt.Sprintf("%s $%.0f", typeLabels[t], total),
				Value: total,
			})
		}
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no assets with market value to chart")
	}

	graph := chart.DonutChart{
		Title:  "Allocation by Type",
		Width:  500,
		Height: 500,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
