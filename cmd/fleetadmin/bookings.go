package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/listing"
)

func bookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "bookings",
		Short:             "Browse reservations",
		PersistentPreRunE: adminOnly(a),
	}
	cmd.AddCommand(bookingsListCmd(a), bookingsGetCmd(a))
	return cmd
}

func bookingsListCmd(a *app) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := handlers.NewBookingsView(a.client, pf.limit, a.log)
			defer v.Close()
			if err := v.Update(cmd.Context(), pf.apply); err != nil {
				return errors.New(handlers.Notify(err, handlers.MsgLoadBookingsFailed))
			}

			out := cmd.OutOrStdout()
			tw := newTable(out, "ID", "CUSTOMER", "CAR", "FROM", "TO", "DAYS", "STATUS", "TOTAL", "PAYMENT")
			for _, r := range v.Rows() {
				row(tw, r.ID, r.Customer, r.Car, r.Start, r.End, r.Days, r.Status, money(r.Total), r.Payment)
			}
			_ = tw.Flush()
			fmt.Fprintf(out, "\n%d bookings", v.Total())
			printPage(out, v.Pager())
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func bookingsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := handlers.BookingDetail(cmd.Context(), a.client, args[0])
			if err != nil {
				return errors.New(handlers.Notify(err, "Failed to load booking"))
			}
			printBooking(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func printBooking(out io.Writer, r listing.Row) {
	tw := newTable(out, "FIELD", "VALUE")
	field(tw, "ID", r.ID)
	field(tw, "Customer", r.Customer)
	field(tw, "Email", r.CustomerEmail)
	field(tw, "Car", r.Car)
	field(tw, "Registration", r.Registration)
	field(tw, "From", r.Start)
	field(tw, "To", r.End)
	field(tw, "Days", r.Days)
	field(tw, "Status", r.Status)
	field(tw, "Total", money(r.Total))
	field(tw, "Payment", r.Payment)
	field(tw, "Transaction", r.TransactionID)
	field(tw, "Pickup address", r.Address)
	_ = tw.Flush()
}
