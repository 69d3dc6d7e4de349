// Package export writes compliance reports as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/tacho/core/compliance"
)

// Header lists the CSV columns written by WriteCSV. Durations are whole minutes.
var Header = []string{
	"vehicle_id", "slot", "at", "crew", "shift_start", "shift_source",
	"today_driving_min", "shift_driving_min", "driving_since_break_min", "block_remaining_min",
	"minimum_rest_min", "remaining_driving_min", "required_daily_rest_min",
	"extended_days", "extended_available",
	"week_driving_min", "week_exceeded", "two_week_driving_min", "two_week_exceeded",
	"reduced_rests", "current_rest_min", "current_rest_type",
}

// WriteJSON writes the reports to w as a JSON array.
func WriteJSON(w io.Writer, reports []compliance.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if reports == nil {
		reports = []compliance.Report{}
	}
	return enc.Encode(reports)
}

// WriteCSV writes one row per report.
func WriteCSV(w io.Writer, reports []compliance.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders a report in Header order.
func Row(r compliance.Report) []string {
	return []string{
		r.VehicleID,
		strconv.Itoa(int(r.Slot)),
		r.At.UTC().Format(time.RFC3339),
		strconv.FormatBool(r.Crew),
		r.ShiftFrom.UTC().Format(time.RFC3339),
		string(r.Source),
		minutes(r.Today.Driving),
		minutes(r.Shift.Driving),
		minutes(r.Block.DrivingSinceBreak),
		minutes(r.BlockRemaining),
		minutes(r.MinimumRest),
		minutes(r.RemainingDriving),
		minutes(r.RequiredDailyRest),
		strconv.Itoa(r.ExtendedDays),
		strconv.FormatBool(r.ExtendedAvailable),
		minutes(r.WeekDriving),
		strconv.FormatBool(r.WeekExceeded),
		minutes(r.TwoWeekDriving),
		strconv.FormatBool(r.TwoWeekExceeded),
		strconv.Itoa(r.ReducedRests),
		minutes(r.CurrentRest),
		r.CurrentRestType.String(),
	}
}

func minutes(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Minute), 10)
}
