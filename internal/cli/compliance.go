package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"workforce/internal/domain/compliance"
)

func today(raw string) (time.Time, error) {
	if raw == "" {
		return compliance.Midnight(time.Now()), nil
	}
	return compliance.ParseDate("today", raw)
}

func newExpiryCmd() *cobra.Command {
	var issued, duration, asOf string
	cmd := &cobra.Command{
		Use:   "expiry",
		Short: "Compute the expiry date of a certificate and its current status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			issueDate, err := compliance.ParseDate("issued", issued)
			if err != nil {
				return err
			}
			expiry, err := compliance.CalculateExpiryString(issueDate, duration)
			if err != nil {
				return err
			}
			now, err := today(asOf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "expiry:    %s\n", expiry.Format("2006-01-02"))
			fmt.Fprintf(out, "status:    %s\n", compliance.Classify(expiry, now))
			fmt.Fprintf(out, "remaining: %s\n", compliance.FormatRemaining(expiry, now))
			return nil
		},
	}
	cmd.Flags().StringVarP(&issued, "issued", "i", "", "Issue date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&duration, "duration", "d", "1", "Validity in years, or 0.5 for half a year")
	cmd.Flags().StringVar(&asOf, "today", "", "Evaluate as of this date instead of today")
	_ = cmd.MarkFlagRequired("issued")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var expires, asOf string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Classify an expiry date as VALID, WARNING or EXPIRED.",
		RunE: func(cmd *cobra.Command, args []string) error {
			expiry, err := compliance.ParseDate("expires", expires)
			if err != nil {
				return err
			}
			now, err := today(asOf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n",
				compliance.Classify(expiry, now),
				compliance.DaysRemaining(expiry, now),
				compliance.FormatRemaining(expiry, now))
			return nil
		},
	}
	cmd.Flags().StringVarP(&expires, "expires", "e", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asOf, "today", "", "Evaluate as of this date instead of today")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}
