package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tacho/infra/logger"
	infratimeline "github.com/kilianp07/tacho/infra/timeline"
	"github.com/kilianp07/tacho/qa/scenarios"
)

var importOpts struct {
	timeline string
	db       string
	vehicle  string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a timeline file into a SQLite store",
	RunE:  importTimeline,
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importOpts.timeline, "timeline", "t", "", "timeline file (yaml)")
	f.StringVar(&importOpts.db, "db", "tacho.db", "sqlite database path")
	f.StringVar(&importOpts.vehicle, "vehicle", "", "vehicle id, overrides the file")
	_ = importCmd.MarkFlagRequired("timeline")
	rootCmd.AddCommand(importCmd)
}

func importTimeline(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(importOpts.timeline)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}
	tl, err := sc.Timeline()
	if err != nil {
		return err
	}
	id := sc.Vehicle
	if importOpts.vehicle != "" {
		id = importOpts.vehicle
	}
	st, err := infratimeline.NewSQLiteStore(importOpts.db)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Append(id, tl...); err != nil {
		return fmt.Errorf("append records: %w", err)
	}
	for _, b := range sc.Boundaries {
		if err := st.AppendBoundary(id, b); err != nil {
			return fmt.Errorf("append boundary: %w", err)
		}
	}
	logger.New("import").Infof("imported %d minutes and %d boundaries for %s", len(tl), len(sc.Boundaries), id)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d minutes, %d boundaries\n", id, len(tl), len(sc.Boundaries))
	return nil
}
