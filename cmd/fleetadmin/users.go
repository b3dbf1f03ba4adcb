package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/verification"
)

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "users",
		Short:             "Manage customer accounts",
		PersistentPreRunE: adminOnly(a),
	}
	cmd.AddCommand(
		usersListCmd(a),
		usersGetCmd(a),
		usersStatusCmd(a, "activate", true),
		usersStatusCmd(a, "deactivate", false),
		usersVerifyCmd(a),
		usersRejectCmd(a),
		usersVerifyGlobalCmd(a),
	)
	return cmd
}

// pageFlags are the paging controls of the list commands.
type pageFlags struct {
	search string
	page   int
	limit  int
}

func (pf *pageFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&pf.search, "search", "s", "", "search term")
	f.IntVar(&pf.page, "page", 1, "page number")
	f.IntVar(&pf.limit, "limit", listing.DefaultLimit, "rows per page")
}

func (pf *pageFlags) apply(p *listing.Pager) {
	p.SetSearch(pf.search)
	p.SetLimit(pf.limit)
	// The page count is unknown until the first response, so Goto would
	// clamp to 1.
	if pf.page > 1 {
		p.Page = pf.page
	}
}

func printPage(out io.Writer, p listing.Pager) {
	fmt.Fprintf(out, "\nPage %d of %d\n", p.Page, p.TotalPages)
}

func usersListCmd(a *app) *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := handlers.NewUsersView(a.client, pf.limit, a.log)
			defer v.Close()
			if err := v.Update(cmd.Context(), pf.apply); err != nil {
				return errors.New(handlers.Notify(err, handlers.MsgLoadUsersFailed))
			}

			out := cmd.OutOrStdout()
			tw := newTable(out, "ID", "NAME", "EMAIL", "PHONE", "ACTIVE", "EMAIL VERIFIED", "DOCS VERIFIED", "JOINED")
			for _, r := range v.Rows() {
				row(tw, r.ID, r.Name, r.Email, r.Phone, yesNo(r.Active), yesNo(r.EmailVerified), yesNo(r.DocumentVerified), r.Joined)
			}
			_ = tw.Flush()
			printPage(out, v.Pager())
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func openUser(a *app, cmd *cobra.Command, id string) (*handlers.UserDetail, error) {
	d, err := handlers.OpenUserDetail(cmd.Context(), a.client, id, a.log)
	if err != nil {
		return nil, errors.New(handlers.Notify(err, "Failed to load user"))
	}
	return d, nil
}

func usersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user and their documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openUser(a, cmd, args[0])
			if err != nil {
				return err
			}
			defer d.Close()
			printUser(cmd.OutOrStdout(), d.User(), d.Documents())
			return nil
		},
	}
}

func printUser(out io.Writer, u models.User, docs []verification.DocumentStatus) {
	tw := newTable(out, "FIELD", "VALUE")
	field(tw, "ID", u.ID.Hex())
	field(tw, "Name", u.Name)
	field(tw, "Email", u.Email)
	field(tw, "Phone", u.Phone)
	field(tw, "Role", u.Role)
	field(tw, "Active", yesNo(u.IsActive))
	field(tw, "Email verified", yesNo(u.IsEmailVerified))
	field(tw, "Documents verified", yesNo(u.IsDocumentVerified))
	field(tw, "Gender", u.Gender)
	field(tw, "Date of birth", listing.FormatDate(u.DateOfBirth))
	field(tw, "Joined", listing.FormatDate(u.CreatedAt))
	if u.Address != nil {
		parts := []string{u.Address.Street, u.Address.City, u.Address.State, u.Address.Pincode}
		field(tw, "Address", strings.Trim(strings.Join(parts, ", "), ", "))
	}
	for _, d := range docs {
		status := d.StateLabel
		if d.RejectionReason != "" {
			status += " (" + d.RejectionReason + ")"
		}
		field(tw, d.Label, status)
		for _, img := range d.Images {
			field(tw, "  image", img)
		}
	}
	_ = tw.Flush()
}

func usersStatusCmd(a *app, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openUser(a, cmd, args[0])
			if err != nil {
				return err
			}
			defer d.Close()
			msg, err := d.SetActive(cmd.Context(), active)
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func parseDocument(s string) (models.DocumentType, error) {
	for _, t := range verification.ReviewableTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", verification.ErrUnknownDocument, s)
}

func usersVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id> <drivingLicense|aadhaar>",
		Short: "Verify a pending document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			d, err := openUser(a, cmd, args[0])
			if err != nil {
				return err
			}
			defer d.Close()
			msg, err := d.Verify(cmd.Context(), doc)
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func usersRejectCmd(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <id> <drivingLicense|aadhaar>",
		Short: "Reject a pending document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			d, err := openUser(a, cmd, args[0])
			if err != nil {
				return err
			}
			defer d.Close()

			prompt := linePrompt(cmd.InOrStdin(), cmd.OutOrStdout())
			if cmd.Flags().Changed("reason") {
				prompt = func(_ context.Context, _ models.DocumentType) (string, bool, error) { return reason, true, nil }
			}
			msg, err := d.Reject(cmd.Context(), doc, prompt)
			if errors.Is(err, verification.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason (prompted when omitted)")
	return cmd
}

func usersVerifyGlobalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-global <id>",
		Short: "Toggle the user's overall document verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openUser(a, cmd, args[0])
			if err != nil {
				return err
			}
			defer d.Close()
			msg, err := d.ToggleGlobal(cmd.Context())
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
