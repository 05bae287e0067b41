// ABOUTME: Command-line client for the HurricaneSoft API behind hs-console
// ABOUTME: Lists and edits todos, memos, messages, mail, the ledger, and announcements

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/hurricanesoft/hs-console/internal/client"
)

const banner = `
  _                _   _
 | |__  ___    ___| |_| |
 | '_ \/ __|  / __| __| |
 | | | \__ \ | (__| |_| |
 |_| |_|___/  \___|\__|_|
`

const defaultAPIURL = "http://localhost:3000"

// app bundles what every command needs.
type app struct {
	api   *client.Client
	creds client.Credentials
	out   io.Writer
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := os.Getenv("HS_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	a := &app{
		api:   client.New(apiURL, client.WithTimeout(15*time.Second), client.WithUserAgent("hs-ctl")),
		creds: client.Credentials{User: os.Getenv("HS_USER"), Password: os.Getenv("HS_PASSWORD")},
		out:   os.Stdout,
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}
	if cmd != "status" && a.creds.User != "" && a.creds.Password == "" {
		a.creds.Password = readPassword()
	}

	ctx := context.Background()
	if err := a.run(ctx, cmd, args); err != nil {
		if client.IsUnauthenticated(err) {
			color.Red("Error: credentials rejected (check HS_USER and HS_PASSWORD)\n")
		} else {
			color.Red("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "status":
		return a.cmdStatus(ctx)
	case "dashboard":
		return a.cmdDashboard(ctx)
	case "health":
		return a.cmdHealth(ctx, args)
	case "todo":
		return a.cmdTodo(ctx, args)
	case "memo":
		return a.cmdMemo(ctx, args)
	case "msg":
		return a.cmdMsg(ctx, args)
	case "mail":
		return a.cmdMail(ctx, args)
	case "account":
		return a.cmdAccount(ctx, args)
	case "announce":
		return a.cmdAnnounce(ctx, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: hs-ctl <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  status                       Show API version and whether your credentials work")
	fmt.Println("  dashboard                    Show the dashboard summary")
	fmt.Println("  health [run]                 Show (or re-run) health checks")
	fmt.Println("  todo [list]                  List todos")
	fmt.Println("  todo add <title>             Add a todo")
	fmt.Println("  todo done <id> [--undo]      Mark a todo done (or not done)")
	fmt.Println("  memo [list]                  List memos")
	fmt.Println("  memo show <id>               Show one memo")
	fmt.Println("  memo add <title> [content]   Add a memo")
	fmt.Println("  msg [inbox]                  List inbox messages")
	fmt.Println("  msg send <to> <body>         Send a message")
	fmt.Println("  mail [list]                  List mail")
	fmt.Println("  mail send <to> <subject> <body>")
	fmt.Println("  account [list] [YYYY-MM]     List ledger entries for a month (default: this month)")
	fmt.Println("  account add <income|expense> <amount> <description> [YYYY-MM-DD]")
	fmt.Println("  announce [list]              List announcements")
	fmt.Println("  announce add <title> [body]  Publish an announcement")
	fmt.Println("  announce ack <id>            Acknowledge an announcement")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  HS_API_URL        API base URL (default: " + defaultAPIURL + ")")
	fmt.Println("  HS_USER           API user (required except for status)")
	fmt.Println("  HS_PASSWORD       API password (prompted when unset)")
	fmt.Println()
}

func readPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(pw)
}

func (a *app) requireCreds() error {
	if a.creds.Empty() {
		return fmt.Errorf("HS_USER and HS_PASSWORD environment variables are required")
	}
	return nil
}

// subcommand splits args into a subcommand (default def) and the rest.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 {
		return def, nil
	}
	return args[0], args[1:]
}

func (a *app) heading(title string) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(a.out)
	cyan.Fprintln(a.out, "  "+title)
	cyan.Fprintln(a.out, "  "+strings.Repeat("-", len([]rune(title))))
}

func (a *app) table(header string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "  (none)")
		fmt.Fprintln(a.out)
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	cols := strings.Split(header, "\t")
	dashes := make([]string, len(cols))
	for i, c := range cols {
		dashes[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(w, "  "+header)
	fmt.Fprintln(w, "  "+strings.Join(dashes, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, "  "+strings.Join(r, "\t"))
	}
	w.Flush()
	fmt.Fprintln(a.out)
}

func (a *app) ok(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, "  ✓ "+format+"\n", args...)
}

// cmdStatus shows API reachability and whether the credentials work
func (a *app) cmdStatus(ctx context.Context) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(a.out)
	v, err := a.api.Version(ctx)
	if err != nil {
		yellow.Fprintf(a.out, "  API:      ")
		color.New(color.FgRed).Fprintf(a.out, "UNREACHABLE (%v)\n\n", err)
		return nil
	}
	green.Fprintf(a.out, "  API:      ")
	fmt.Fprintf(a.out, "%s %s at %s\n", v.Name, v.Version, a.api.BaseURL())

	if a.creds.Empty() {
		yellow.Fprintf(a.out, "  Identity: ")
		fmt.Fprintln(a.out, "(no credentials - set HS_USER and HS_PASSWORD)")
	} else if err := a.api.Probe(ctx, a.creds); err != nil {
		yellow.Fprintf(a.out, "  Identity: ")
		color.New(color.FgRed).Fprintf(a.out, "%s rejected (%v)\n", a.creds.User, err)
	} else {
		green.Fprintf(a.out, "  Identity: ")
		fmt.Fprintln(a.out, a.creds.User)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdDashboard(ctx context.Context) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	s, err := a.api.Dashboard(ctx, a.creds)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	a.heading("Dashboard")
	fmt.Fprintf(a.out, "  Todo:          %d pending, %d done\n", s.TodoPending, s.TodoCompleted)
	fmt.Fprintf(a.out, "  Memos:         %d\n", s.MemoTotal)
	fmt.Fprintf(a.out, "  Messages:      %d unread\n", s.MsgUnread)
	fmt.Fprintf(a.out, "  Mail:          %d unread\n", s.MailUnread)
	fmt.Fprintf(a.out, "  Announcements: %d pending\n", s.AnnouncePending)
	health := color.New(color.FgGreen).Sprint(s.HealthStatus)
	if !s.HealthOK {
		health = color.New(color.FgRed).Sprint(s.HealthStatus)
	}
	fmt.Fprintf(a.out, "  Health:        %s\n", health)
	fmt.Fprintf(a.out, "  Version:       %s (up %s)\n", s.Version, s.Uptime)
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) cmdHealth(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, _ := subcommand(args, "status")

	var checks []client.HealthCheck
	var err error
	switch sub {
	case "status", "list":
		checks, err = a.api.HealthStatus(ctx, a.creds)
	case "run", "check":
		checks, err = a.api.RunHealthChecks(ctx, a.creds)
	default:
		return fmt.Errorf("unknown health subcommand: %s (use status, run)", sub)
	}
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	a.heading("Health")
	rows := make([][]string, 0, len(checks))
	for _, c := range checks {
		state := color.New(color.FgGreen).Sprint(c.Status)
		if !c.OK {
			state = color.New(color.FgRed).Sprint(c.Status)
		}
		rows = append(rows, []string{c.Name, state, truncate(c.Message, 40), c.CheckedAt})
	}
	a.table("NAME\tSTATUS\tMESSAGE\tCHECKED", rows)
	return nil
}

func (a *app) cmdTodo(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "list")

	switch sub {
	case "list", "ls":
		todos, err := a.api.ListTodos(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("listing todos: %w", err)
		}
		a.heading("Todo")
		rows := make([][]string, 0, len(todos))
		for _, t := range todos {
			mark := "[ ]"
			if t.Done {
				mark = "[x]"
			}
			rows = append(rows, []string{truncate(t.ID, 12), mark, truncate(t.Title, 48), t.Created})
		}
		a.table("ID\tDONE\tTITLE\tCREATED", rows)
		return nil
	case "add":
		title := strings.TrimSpace(strings.Join(rest, " "))
		if title == "" {
			return fmt.Errorf("usage: hs-ctl todo add <title>")
		}
		if err := a.api.AddTodo(ctx, a.creds, title); err != nil {
			return fmt.Errorf("adding todo: %w", err)
		}
		a.ok("Added todo %q", title)
		return nil
	case "done":
		if len(rest) == 0 {
			return fmt.Errorf("usage: hs-ctl todo done <id> [--undo]")
		}
		done := !(len(rest) > 1 && rest[1] == "--undo")
		if err := a.api.SetTodoDone(ctx, a.creds, rest[0], done); err != nil {
			return fmt.Errorf("updating todo: %w", err)
		}
		a.ok("Todo %s done=%t", rest[0], done)
		return nil
	default:
		return fmt.Errorf("unknown todo subcommand: %s (use list, add, done)", sub)
	}
}

func (a *app) cmdMemo(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "list")

	switch sub {
	case "list", "ls":
		memos, err := a.api.ListMemos(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("listing memos: %w", err)
		}
		a.heading("Memos")
		rows := make([][]string, 0, len(memos))
		for _, m := range memos {
			rows = append(rows, []string{truncate(m.ID, 12), truncate(m.Title, 40), m.Created})
		}
		a.table("ID\tTITLE\tCREATED", rows)
		return nil
	case "show", "read":
		if len(rest) == 0 {
			return fmt.Errorf("usage: hs-ctl memo show <id>")
		}
		m, err := a.api.ReadMemo(ctx, a.creds, rest[0])
		if err != nil {
			return fmt.Errorf("reading memo: %w", err)
		}
		a.heading(m.Title)
		fmt.Fprintln(a.out, m.Body)
		fmt.Fprintln(a.out)
		return nil
	case "add":
		if len(rest) == 0 {
			return fmt.Errorf("usage: hs-ctl memo add <title> [content]")
		}
		content := strings.Join(rest[1:], " ")
		if err := a.api.AddMemo(ctx, a.creds, rest[0], content); err != nil {
			return fmt.Errorf("adding memo: %w", err)
		}
		a.ok("Added memo %q", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown memo subcommand: %s (use list, show, add)", sub)
	}
}

func (a *app) messageTable(msgs []client.Message) {
	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		flag := " "
		if !m.Read {
			flag = color.New(color.FgYellow).Sprint("*")
		}
		summary := m.Subject
		if summary == "" {
			summary = m.Preview
		}
		rows = append(rows, []string{flag, truncate(m.ID, 12), truncate(m.From, 20), truncate(summary, 40), m.Date})
	}
	a.table(" \tID\tFROM\tSUBJECT\tDATE", rows)
}

func (a *app) cmdMsg(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "inbox")

	switch sub {
	case "inbox", "list", "ls":
		inbox, err := a.api.FetchInbox(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("fetching inbox: %w", err)
		}
		a.heading(fmt.Sprintf("Inbox (%d unread)", inbox.Unread))
		a.messageTable(inbox.Messages)
		return nil
	case "send", "reply":
		if len(rest) < 2 {
			return fmt.Errorf("usage: hs-ctl msg send <to> <body>")
		}
		if err := a.api.SendMessage(ctx, a.creds, rest[0], strings.Join(rest[1:], " ")); err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		a.ok("Sent message to %s", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown msg subcommand: %s (use inbox, send)", sub)
	}
}

func (a *app) cmdMail(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "list")

	switch sub {
	case "list", "ls":
		mail, err := a.api.ListMail(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("listing mail: %w", err)
		}
		a.heading("Mail")
		a.messageTable(mail)
		return nil
	case "send":
		if len(rest) < 3 {
			return fmt.Errorf("usage: hs-ctl mail send <to> <subject> <body>")
		}
		if err := a.api.SendMail(ctx, a.creds, rest[0], rest[1], strings.Join(rest[2:], " ")); err != nil {
			return fmt.Errorf("sending mail: %w", err)
		}
		a.ok("Mailed %s", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown mail subcommand: %s (use list, send)", sub)
	}
}

func (a *app) cmdAccount(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "list")
	if strings.Count(sub, "-") == 1 {
		// hs-ctl account 2024-05
		sub, rest = "list", args
	}

	switch sub {
	case "list", "ls":
		month := time.Now().Format("2006-01")
		if len(rest) > 0 {
			if _, err := time.Parse("2006-01", rest[0]); err != nil {
				return fmt.Errorf("invalid month %q (want YYYY-MM)", rest[0])
			}
			month = rest[0]
		}
		entries, err := a.api.ListLedger(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("listing ledger: %w", err)
		}
		var income, expense float64
		rows := [][]string{}
		for _, e := range entries {
			if !strings.HasPrefix(e.Date, month) {
				continue
			}
			if e.Type == client.EntryIncome {
				income += e.Amount
			} else {
				expense += e.Amount
			}
			rows = append(rows, []string{e.Date, e.Type, strconv.FormatFloat(e.Amount, 'f', 2, 64), truncate(e.Description, 40)})
		}
		a.heading("Ledger " + month)
		a.table("DATE\tTYPE\tAMOUNT\tDESCRIPTION", rows)
		fmt.Fprintf(a.out, "  Income %.2f  Expense %.2f  Balance %.2f\n\n", income, expense, income-expense)
		return nil
	case "add":
		if len(rest) < 3 {
			return fmt.Errorf("usage: hs-ctl account add <income|expense> <amount> <description> [YYYY-MM-DD]")
		}
		amount, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", rest[1])
		}
		entry := client.NewLedgerEntry{Type: rest[0], Amount: amount, Description: rest[2]}
		if len(rest) > 3 {
			d, err := time.ParseInLocation("2006-01-02", rest[3], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", rest[3])
			}
			entry.Date = d
		}
		if err := a.api.AddLedgerEntry(ctx, a.creds, entry); err != nil {
			return fmt.Errorf("adding entry: %w", err)
		}
		a.ok("Added %s %.2f", entry.Type, entry.Amount)
		return nil
	default:
		return fmt.Errorf("unknown account subcommand: %s (use list, add)", sub)
	}
}

func (a *app) cmdAnnounce(ctx context.Context, args []string) error {
	if err := a.requireCreds(); err != nil {
		return err
	}
	sub, rest := subcommand(args, "list")

	switch sub {
	case "list", "ls":
		items, err := a.api.ListAnnouncements(ctx, a.creds)
		if err != nil {
			return fmt.Errorf("listing announcements: %w", err)
		}
		a.heading("Announcements")
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			acked := color.New(color.FgYellow).Sprint("pending")
			if it.Acked {
				acked = "acked"
			}
			rows = append(rows, []string{truncate(it.ID, 12), truncate(it.Title, 40), acked, it.Created})
		}
		a.table("ID\tTITLE\tSTATE\tCREATED", rows)
		return nil
	case "add", "publish":
		if len(rest) == 0 {
			return fmt.Errorf("usage: hs-ctl announce add <title> [body]")
		}
		if err := a.api.AddAnnouncement(ctx, a.creds, rest[0], strings.Join(rest[1:], " ")); err != nil {
			return fmt.Errorf("publishing announcement: %w", err)
		}
		a.ok("Published %q", rest[0])
		return nil
	case "ack":
		if len(rest) == 0 {
			return fmt.Errorf("usage: hs-ctl announce ack <id>")
		}
		if err := a.api.AckAnnouncement(ctx, a.creds, rest[0]); err != nil {
			return fmt.Errorf("acknowledging announcement: %w", err)
		}
		a.ok("Acknowledged %s", rest[0])
		return nil
	default:
		return fmt.Errorf("unknown announce subcommand: %s (use list, add, ack)", sub)
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
