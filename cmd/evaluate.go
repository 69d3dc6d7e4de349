package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/kilianp07/tacho/core/compliance"
	"github.com/kilianp07/tacho/core/model"
	"github.com/kilianp07/tacho/pkg/export"
	"github.com/kilianp07/tacho/qa/scenarios"
)

var evalOpts struct {
	timeline string
	slots    []int
	at       string
	crew     bool
	format   string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a timeline file and print the compliance report",
	RunE:  evaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVarP(&evalOpts.timeline, "timeline", "t", "", "timeline file (yaml)")
	f.IntSliceVar(&evalOpts.slots, "slot", []int{1}, "driver slot(s) to evaluate")
	f.StringVar(&evalOpts.at, "at", "", "reference instant (RFC3339), defaults to the last recorded minute")
	f.BoolVar(&evalOpts.crew, "crew", false, "apply crew daily rest")
	f.StringVarP(&evalOpts.format, "format", "f", "table", "output format: table|json|csv")
	_ = evaluateCmd.MarkFlagRequired("timeline")
	rootCmd.AddCommand(evaluateCmd)
}

func evaluate(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(evalOpts.timeline)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}
	tl, err := sc.Timeline()
	if err != nil {
		return err
	}
	at, err := referenceInstant(evalOpts.at, tl)
	if err != nil {
		return err
	}
	reports := make([]compliance.Report, 0, len(evalOpts.slots))
	for _, n := range evalOpts.slots {
		tr, err := sc.Tracker()
		if err != nil {
			return err
		}
		rep, err := compliance.Evaluate(compliance.Input{
			VehicleID:  sc.Vehicle,
			Timeline:   tl,
			Boundaries: sc.Boundaries,
			Tracker:    tr,
			Slot:       model.Slot(n),
			Now:        at,
			Crew:       evalOpts.crew,
		})
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	}
	return render(cmd.OutOrStdout(), evalOpts.format, reports)
}

func referenceInstant(s string, tl model.Timeline) (time.Time, error) {
	if s != "" {
		at, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --at: %w", err)
		}
		return at.UTC(), nil
	}
	if len(tl) == 0 {
		return time.Time{}, fmt.Errorf("timeline is empty, --at is required")
	}
	return tl[len(tl)-1].Minute, nil
}

func render(w io.Writer, format string, reports []compliance.Report) error {
	switch strings.ToLower(format) {
	case "json":
		return export.WriteJSON(w, reports)
	case "csv":
		return export.WriteCSV(w, reports)
	case "table", "":
		for _, r := range reports {
			reportTable(w, r)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func reportTable(w io.Writer, r compliance.Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(fmt.Sprintf("%s %s at %s", r.VehicleID, r.Slot, r.At.Format(time.RFC3339)))
	tw.AppendHeader(table.Row{"Rule", "Value"})
	tw.AppendRows([]table.Row{
		{"shift start", fmt.Sprintf("%s (%s)", r.ShiftFrom.Format(time.RFC3339), r.Source)},
		{"driving today", hm(r.Today.Driving)},
		{"driving this shift", hm(r.Shift.Driving)},
		{"driving since break", hm(r.Block.DrivingSinceBreak)},
		{"block remaining", hm(r.BlockRemaining)},
		{"block warning", r.BlockWarning},
		{"minimum rest", hm(r.MinimumRest)},
		{"remaining driving", hm(r.RemainingDriving)},
		{"extended days", fmt.Sprintf("%d/2", r.ExtendedDays)},
		{"required daily rest", hm(r.RequiredDailyRest)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"week driving", flag(hm(r.WeekDriving), r.WeekExceeded)},
		{"two-week driving", flag(hm(r.TwoWeekDriving), r.TwoWeekExceeded)},
		{"reduced daily rests", fmt.Sprintf("%d/3", r.ReducedRests)},
		{"current rest", fmt.Sprintf("%s (%s)", hm(r.CurrentRest), r.CurrentRestType)},
	})
	tw.Render()
}

func hm(d time.Duration) string {
	m := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func flag(v string, exceeded bool) string {
	if exceeded {
		return v + " EXCEEDED"
	}
	return v
}
