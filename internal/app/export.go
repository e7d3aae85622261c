package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"prediction-dashboard/internal/model"
)

const defaultExportWindow = 30 * 24 * time.Hour

// Export renders validated predictions as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	st, closeStore, err := a.openStore(ctx, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-defaultExportWindow)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	records, err := st.ListValidatedBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no validated predictions found for export window")
		return nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		return exportTime(records[i]).Before(exportTime(records[j]))
	})

	downsampled := downsamplePredictions(records, opts.MaxPoints)
	a.Logger.Info().Int("total", len(records)).Int("exported", len(downsampled)).Msg("exporting validated predictions")

	if opts.CSVPath != "" {
		if err := writePredictionsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writePredictionsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

// exportTime picks the chart/sort axis value for a record.
func exportTime(p model.Prediction) time.Time {
	if !p.PredictionTime.IsZero() {
		return p.PredictionTime
	}
	return p.CreatedAt
}

func downsamplePredictions(records []model.Prediction, max int) []model.Prediction {
	if max <= 0 || len(records) <= max {
		return records
	}

	result := make([]model.Prediction, 0, max)
	step := float64(len(records)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(records) {
			idx = len(records) - 1
		}
		result = append(result, records[idx])
	}
	return result
}

func writePredictionsCSV(path string, records []model.Prediction) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "created_at", "prediction_time", "target_time", "timeframe_minutes", "trend", "confidence", "current_price", "predicted_price", "actual_price", "validation_result", "price_error", "price_error_pct"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range records {
		result := ""
		if p.Result != nil {
			result = string(*p.Result)
		}
		actual, priceErr, priceErrPct := "", "", ""
		if p.ActualPrice != nil {
			actual = p.ActualPrice.String()
		}
		if p.PriceError != nil {
			priceErr = p.PriceError.String()
		}
		if p.PriceErrorPct != nil {
			priceErrPct = p.PriceErrorPct.String()
		}

		record := []string{
			p.ID,
			formatExportTime(p.CreatedAt),
			formatExportTime(p.PredictionTime),
			formatExportTime(p.TargetTime),
			strconv.Itoa(p.TimeframeMinutes),
			p.Trend,
			strconv.FormatFloat(p.Confidence, 'f', 1, 64),
			p.CurrentPrice.String(),
			p.PredictedPrice.String(),
			actual,
			result,
			priceErr,
			priceErrPct,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writePredictionsPNG(path string, records []model.Prediction) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, 0, len(records))
	predicted := make([]float64, 0, len(records))
	actual := make([]float64, 0, len(records))
	errorPct := make([]float64, 0, len(records))

	for _, p := range records {
		ts := exportTime(p)
		if ts.IsZero() {
			continue
		}
		x = append(x, ts)
		predicted = append(predicted, p.PredictedPrice.InexactFloat64())
		if p.ActualPrice != nil {
			actual = append(actual, p.ActualPrice.InexactFloat64())
		} else {
			actual = append(actual, p.PredictedPrice.InexactFloat64())
		}
		if p.PriceErrorPct != nil {
			errorPct = append(errorPct, p.PriceErrorPct.Abs().InexactFloat64())
		} else {
			errorPct = append(errorPct, 0)
		}
	}
	if len(x) < 2 {
		return errors.New("not enough datapoints with usable timestamps to chart")
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: priceFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name: "Error (%)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Predicted",
				XValues: x,
				YValues: predicted,
			},
			chart.TimeSeries{
				Name:    "Actual",
				XValues: x,
				YValues: actual,
			},
			chart.TimeSeries{
				Name:    "Error %",
				XValues: x,
				YValues: errorPct,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
