package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/listing"
)

const dateLayout = "2006-01-02"

func statsCmd(a *app) *cobra.Command {
	var preset, from, to string
	cmd := &cobra.Command{
		Use:               "stats",
		Short:             "Show the dashboard for a date range",
		PersistentPreRunE: adminOnly(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := handlers.NewDashboard(a.client, a.log)

			if from != "" || to != "" {
				start, end, err := parseRange(from, to)
				if err != nil {
					return err
				}
				if err := d.SetCustomRange(start, end); err != nil {
					return err
				}
			} else {
				p, err := handlers.ParsePreset(preset)
				if err != nil {
					return err
				}
				if p == handlers.PresetCustom {
					return errors.New("custom range needs --from and --to")
				}
				d.SelectPreset(p)
			}

			stats, err := d.Load(cmd.Context())
			if err != nil {
				return errors.New(handlers.Notify(err, handlers.MsgLoadStatsFailed))
			}

			out := cmd.OutOrStdout()
			r := d.Range()
			fmt.Fprintf(out, "%s to %s (%s)\n\n", r.Start.Format(dateLayout), r.End.Format(dateLayout), d.Preset())

			tw := newTable(out, "METRIC", "VALUE")
			row(tw, "Total users", stats.TotalUsers)
			row(tw, "Total cars", stats.TotalCars)
			row(tw, "Active bookings", stats.ActiveBookings)
			row(tw, "Revenue", money(stats.TotalRevenue))
			_ = tw.Flush()

			if len(stats.RevenueChart) > 0 {
				fmt.Fprintln(out)
				tw = newTable(out, "PERIOD", "REVENUE")
				for _, p := range stats.RevenueChart {
					row(tw, p.Name, money(p.Revenue))
				}
				_ = tw.Flush()
			}

			if len(stats.RecentActivity) > 0 {
				fmt.Fprintln(out, "\nRecent activity")
				tw = newTable(out, "CUSTOMER", "CAR", "FROM", "STATUS", "TOTAL")
				for _, r := range listing.BookingRows(stats.RecentActivity) {
					row(tw, r.Customer, r.Car, r.Start, r.Status, money(r.Total))
				}
				_ = tw.Flush()
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&preset, "range", "r", string(handlers.PresetLast30), "today, yesterday, last7, last30, thisMonth, lastMonth")
	f.StringVar(&from, "from", "", "custom range start (YYYY-MM-DD)")
	f.StringVar(&to, "to", "", "custom range end, inclusive (YYYY-MM-DD)")
	return cmd
}

// parseRange reads a custom range in local time; the end day is inclusive.
func parseRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, errors.New("--from and --to must be given together")
	}
	start, err := time.ParseInLocation(dateLayout, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	return start, end.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}
