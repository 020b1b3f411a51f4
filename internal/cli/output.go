package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

func parseOutputFormat(raw string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(raw))); format {
	case OutputTable, OutputJSON:
		return format, nil
	default:
		return "", fmt.Errorf("%w: invalid output format %q (expected table|json)", domain.ErrInvalidInput, raw)
	}
}

// UserRow is a user with the number of entities it owns.
type UserRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Sources  int    `json:"sources"`
	Feeds    int    `json:"feeds"`
	Sessions int    `json:"sessions"`
}

// FeedRow is a feed with its owner resolved.
type FeedRow struct {
	ID         string   `json:"id"`
	OwnerEmail string   `json:"ownerEmail"`
	Name       string   `json:"name"`
	Keywords   string   `json:"keywords"`
	SourceIDs  []string `json:"sourceIds"`
}

// SessionRow describes a session without revealing its full token.
type SessionRow struct {
	TokenPrefix string    `json:"tokenPrefix"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Expired     bool      `json:"expired"`
	Orphaned    bool      `json:"orphaned"`
}

// Stats counts the entities of the store.
type Stats struct {
	Users     int   `json:"users"`
	Sources   int   `json:"sources"`
	Feeds     int   `json:"feeds"`
	Sessions  int   `json:"sessions"`
	StoreSize int64 `json:"storeSize"`
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func writeUsersTable(out io.Writer, users []UserRow) error {
	tw := newTabWriter(out)

	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSOURCES\tFEEDS\tSESSIONS")

	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			u.ID, compactText(u.Name, 30), u.Email, u.Sources, u.Feeds, u.Sessions)
	}

	return tw.Flush()
}

func writeFeedsTable(out io.Writer, feeds []FeedRow) error {
	tw := newTabWriter(out)

	fmt.Fprintln(tw, "ID\tOWNER\tNAME\tKEYWORDS\tSOURCES")

	for _, f := range feeds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			f.ID, f.OwnerEmail, compactText(f.Name, 30), compactText(f.Keywords, 40), len(f.SourceIDs))
	}

	return tw.Flush()
}

func writeSessionsTable(out io.Writer, sessions []SessionRow, now time.Time) error {
	tw := newTabWriter(out)

	fmt.Fprintln(tw, "TOKEN\tUSER\tCREATED\tSTATUS")

	for _, s := range sessions {
		user := s.UserEmail
		if s.Orphaned {
			user = s.UserID + " (deleted)"
		}

		status := "active"
		if s.Expired {
			status = "expired"
		}

		fmt.Fprintf(tw, "%s...\t%s\t%s\t%s\n",
			s.TokenPrefix, user, humanize.RelTime(s.CreatedAt, now, "ago", "from now"), status)
	}

	return tw.Flush()
}

func writeStatsTable(out io.Writer, st Stats) error {
	tw := newTabWriter(out)

	size := "-"
	if st.StoreSize >= 0 {
		size = humanize.Bytes(uint64(st.StoreSize))
	}

	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintf(tw, "users\t%s\n", humanize.Comma(int64(st.Users)))
	fmt.Fprintf(tw, "sources\t%s\n", humanize.Comma(int64(st.Sources)))
	fmt.Fprintf(tw, "feeds\t%s\n", humanize.Comma(int64(st.Feeds)))
	fmt.Fprintf(tw, "sessions\t%s\n", humanize.Comma(int64(st.Sessions)))
	fmt.Fprintf(tw, "store size\t%s\n", size)

	return tw.Flush()
}

func compactText(v string, limit int) string {
	v = strings.Join(strings.Fields(v), " ")
	if limit <= 0 || len(v) <= limit {
		return v
	}

	return v[:limit-3] + "..."
}
