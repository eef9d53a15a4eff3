// Package eod summarizes the day's trade journal into a CSV report.
package eod

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type tradeLine struct {
	Time          string
	Strategy      string
	Asset         string
	Epoch         int64
	Direction     string
	OrderID       string
	EntryPrice    float64
	Size          float64
	Shares        float64
	Confidence    float64
	WeightedScore float64
}

type aggRow struct {
	Asset         string
	Trades        int
	UpTrades      int
	DownTrades    int
	TotalStake    float64
	AvgConfidence float64
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func todaysTradeFile(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func eodCSVPath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "eod", d+".csv")
}

// SummarizeDay aggregates the day's journal per asset and writes the
// CSV report. Returns "" with no error when there is nothing to report.
func SummarizeDay(t time.Time) (string, error) {
	inPath := todaysTradeFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	confSums := map[string]float64{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tl tradeLine
		if err := json.Unmarshal(sc.Bytes(), &tl); err != nil {
			continue
		}
		a := aggs[tl.Asset]
		if a == nil {
			a = &aggRow{Asset: tl.Asset}
			aggs[tl.Asset] = a
		}
		a.Trades++
		switch tl.Direction {
		case "UP":
			a.UpTrades++
		case "DOWN":
			a.DownTrades++
		}
		a.TotalStake += tl.Size
		confSums[tl.Asset] += tl.Confidence
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	rows := make([]*aggRow, 0, len(aggs))
	for asset, a := range aggs {
		a.AvgConfidence = confSums[asset] / float64(a.Trades)
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Asset < rows[j].Asset })

	outPath := eodCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"asset", "trades", "up_trades", "down_trades", "total_stake", "avg_confidence"}); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.Asset,
			strconv.Itoa(r.Trades),
			strconv.Itoa(r.UpTrades),
			strconv.Itoa(r.DownTrades),
			fmt.Sprintf("%.2f", r.TotalStake),
			fmt.Sprintf("%.4f", r.AvgConfidence),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

// SummarizeToday summarizes the current UTC day.
func SummarizeToday() (string, error) {
	return SummarizeDay(time.Now().UTC())
}

// ShouldRunNow reports whether the daily summary window (end of UTC
// day) is open.
func ShouldRunNow() (bool, error) {
	now := time.Now().UTC()
	return now.Hour() == 23 && now.Minute() >= 55, nil
}
