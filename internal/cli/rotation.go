package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"workforce/internal/domain/shifts"
)

// parseShiftFlags reads "Name=HH:MM-HH:MM" entries. The name doubles as the id.
func parseShiftFlags(entries []string) ([]shifts.Shift, error) {
	out := make([]shifts.Shift, 0, len(entries))
	for _, entry := range entries {
		name, hours, ok := strings.Cut(entry, "=")
		start, end, ok2 := strings.Cut(hours, "-")
		if !ok || !ok2 {
			return nil, fmt.Errorf("shift %q must look like Name=06:00-14:00", entry)
		}
		in := shifts.ShiftInput{Name: strings.TrimSpace(name), StartTime: strings.TrimSpace(start), EndTime: strings.TrimSpace(end)}
		if err := shifts.ValidateInput(in); err != nil {
			return nil, fmt.Errorf("shift %q: %w", entry, err)
		}
		out = append(out, shifts.Shift{ID: in.Name, Name: in.Name, StartTime: in.StartTime, EndTime: in.EndTime})
	}
	return out, nil
}

func newRotationCmd() *cobra.Command {
	var entries []string
	var anchor, from string
	var weeks int
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Print the weekly shift rotation for an anchor shift.",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := parseShiftFlags(entries)
			if err != nil {
				return err
			}
			start, err := today(from)
			if err != nil {
				return err
			}
			if weeks < 1 || weeks > shifts.MaxScheduleWeeks {
				return fmt.Errorf("weeks must be between 1 and %d", shifts.MaxScheduleWeeks)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WEEK\tSTARTS\tSHIFT\tHOURS")
			for _, ws := range shifts.Schedule(list, anchor, start, weeks) {
				name, hours := "-", "-"
				if ws.Shift != nil {
					name, hours = ws.Shift.Name, ws.Shift.StartTime+"-"+ws.Shift.EndTime
				}
				fmt.Fprintf(tw, "%d-W%02d\t%s\t%s\t%s\n", ws.Year, ws.Week, ws.WeekStart.Format("2006-01-02"), name, hours)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVarP(&entries, "shift", "s", nil, "Shift as Name=HH:MM-HH:MM, repeatable")
	cmd.Flags().StringVarP(&anchor, "anchor", "a", "", "Name of the anchor shift")
	cmd.Flags().StringVar(&from, "from", "", "First week, any date inside it (default today)")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 4, "Number of weeks to print")
	_ = cmd.MarkFlagRequired("shift")
	_ = cmd.MarkFlagRequired("anchor")
	return cmd
}
