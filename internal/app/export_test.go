package app

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prediction-dashboard/internal/model"
)

func exportRecord(id string, at time.Time) model.Prediction {
	result := model.ResultWin
	actual := decimal.NewFromInt(103450)
	e := decimal.NewFromFloat(-50)
	ePct := decimal.NewFromFloat(-0.048)
	return model.Prediction{
		ID:               id,
		CreatedAt:        at,
		PredictionTime:   at,
		TargetTime:       at.Add(15 * time.Minute),
		TimeframeMinutes: 15,
		CurrentPrice:     decimal.NewFromInt(103000),
		PredictedPrice:   decimal.NewFromInt(103500),
		Trend:            "bullish",
		Confidence:       70,
		Validated:        true,
		Result:           &result,
		ActualPrice:      &actual,
		PriceError:       &e,
		PriceErrorPct:    &ePct,
	}
}

func TestDownsamplePredictions(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.Prediction, 1000)
	for i := range records {
		records[i] = exportRecord("p", base.Add(time.Duration(i)*time.Minute))
	}

	down := downsamplePredictions(records, 100)

	if len(down) != 100 {
		t.Fatalf("降采样后应为 100 条, 实际 %d", len(down))
	}
	if !down[0].PredictionTime.Equal(records[0].PredictionTime) {
		t.Errorf("首条记录应保留")
	}
	if !down[len(down)-1].PredictionTime.Equal(records[len(records)-1].PredictionTime) {
		t.Errorf("末条记录应保留")
	}
	for i := 1; i < len(down); i++ {
		if down[i].PredictionTime.Before(down[i-1].PredictionTime) {
			t.Fatalf("降采样结果乱序: %d", i)
		}
	}
}

func TestDownsamplePredictionsNoop(t *testing.T) {
	records := []model.Prediction{exportRecord("a", time.Now()), exportRecord("b", time.Now())}

	if got := downsamplePredictions(records, 10); len(got) != 2 {
		t.Errorf("少于上限时不应降采样, 实际 %d", len(got))
	}
	if got := downsamplePredictions(records, 0); len(got) != 2 {
		t.Errorf("上限为 0 时不应降采样, 实际 %d", len(got))
	}
}

func TestWritePredictionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "predictions.csv")
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	if err := writePredictionsCSV(path, []model.Prediction{exportRecord("pred-001", at)}); err != nil {
		t.Fatalf("写 CSV 失败: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("打开 CSV 失败: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("读 CSV 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("应有表头和 1 行数据, 实际 %d 行", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != 13 {
		t.Errorf("表头不符: %v", rows[0])
	}
	if rows[1][0] != "pred-001" || rows[1][10] != "WIN" {
		t.Errorf("数据行不符: %v", rows[1])
	}
	if rows[1][1] != "2025-06-15T10:00:00Z" {
		t.Errorf("created_at 格式不符: %q", rows[1][1])
	}
}

func TestExportTimeFallback(t *testing.T) {
	created := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	p := model.Prediction{CreatedAt: created}

	if got := exportTime(p); !got.Equal(created) {
		t.Errorf("无预测时间时应回退到 created_at, 实际 %s", got)
	}

	predTime := created.Add(time.Hour)
	p.PredictionTime = predTime
	if got := exportTime(p); !got.Equal(predTime) {
		t.Errorf("应优先使用 prediction_time, 实际 %s", got)
	}
}
