package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

// Show runs one refresh cycle and prints the resulting snapshot.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	st, closeStore, err := a.openStore(ctx, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := a.newService(st, nil)
	snap, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snap)
	}

	fmt.Fprintf(os.Stdout, "BTC spot: %.2f\n", snap.CurrentPrice)
	fmt.Fprintf(os.Stdout, "System: %s (%s), last seen %s\n", snap.SystemStatus.Status, snap.SystemStatus.Message, snap.SystemStatus.LastSeen)
	fmt.Fprintf(os.Stdout, "Last update: %s\n\n", snap.LastUpdate)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Scope\tTotal\tWins\tLosses\tWin%\tAvgErr\tAvgErr%")
	writeAggRow(writer, "overall", snap.OverallStats.TotalPredictions, snap.OverallStats.Wins, snap.OverallStats.Losses, snap.OverallStats.WinRate, snap.OverallStats.AvgError, snap.OverallStats.AvgErrorPct)
	for _, tf := range snap.TimeframeStats {
		writeAggRow(writer, tf.Label, tf.TotalPredictions, tf.Wins, tf.Losses, tf.WinRate, tf.AvgError, tf.AvgErrorPct)
	}
	for _, cat := range snap.CategoryStats {
		writeAggRow(writer, cat.Category, cat.TotalPredictions, cat.Wins, cat.Losses, cat.WinRate, cat.AvgError, cat.AvgErrorPct)
	}
	writer.Flush()

	if snap.OverallStats.TotalPredictions == 0 {
		fmt.Fprintln(os.Stdout, "\nno validated predictions in the current window")
	}
	fmt.Fprintf(os.Stdout, "\nrecent: %d, pending validation: %d\n", len(snap.RecentPredictions), len(snap.PendingPredictions))
	return nil
}

func writeAggRow(writer *tabwriter.Writer, scope string, total, wins, losses int, winRate, avgErr, avgErrPct float64) {
	fmt.Fprintf(writer, "%s\t%d\t%d\t%d\t%.1f\t%.2f\t%.3f\n", scope, total, wins, losses, winRate, avgErr, avgErrPct)
}
