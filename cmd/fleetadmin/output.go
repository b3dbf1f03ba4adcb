package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/ukydev/fleet-admin/internal/models"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// field prints one "label: value" line of a detail view; empty values are
// shown as N/A.
func field(tw *tabwriter.Writer, label string, value interface{}) {
	s := fmt.Sprint(value)
	if s == "" {
		s = "N/A"
	}
	fmt.Fprintf(tw, "%s:\t%s\n", label, s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func money(v float64) string { return fmt.Sprintf("₹%.0f", v) }

func optMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return money(*v)
}

// readPassword reads a password without echo when stdin is a terminal and
// as a plain line otherwise.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && terminal.IsTerminal(int(f.Fd())) {
		b, err := terminal.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// linePrompt asks for a rejection reason on in. End of input cancels.
func linePrompt(in io.Reader, out io.Writer) func(ctx context.Context, doc models.DocumentType) (string, bool, error) {
	r := bufio.NewReader(in)
	return func(_ context.Context, doc models.DocumentType) (string, bool, error) {
		fmt.Fprintf(out, "Reason for rejecting %s: ", doc.Label())
		line, err := r.ReadString('\n')
		if err == io.EOF && line == "" {
			return "", false, nil
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		return strings.TrimRight(line, "\r\n"), true, nil
	}
}
