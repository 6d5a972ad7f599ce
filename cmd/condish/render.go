package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"condish/internal/api"
	"condish/internal/report"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		return statusKindColors(kind).Sprint(base)
	}
	return base
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", value)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColors(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		blue := text.Colors{text.FgBlue}
		line = blue.Sprint(line)
		rule = blue.Sprint(rule)
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printLines(out io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}

func renderDaemonStatus(out io.Writer, status api.DaemonStatus, colorize bool) {
	printLines(out, renderSectionHeader("Daemon", colorize)...)
	kind := statusError
	if status.Running {
		kind = statusOK
	}
	printLines(out,
		renderStatusLine("Running", kind, fmt.Sprintf("pid %d", status.PID), colorize),
		renderField("Store", status.StoreBackend),
		renderField("Collaborators", status.Collaborators),
		renderField("Lock", status.LockFilePath),
	)

	s := status.Session
	printLines(out, "")
	printLines(out, renderSectionHeader("Session", colorize)...)
	printLines(out,
		renderField("ID", s.SessionID),
		renderField("Mode", s.Mode),
		renderField("State", s.State),
		renderField("Rooms", strconv.Itoa(s.Rooms)),
		renderField("Findings", strconv.Itoa(s.Findings)),
		renderField("Persistence", yesNo(s.Persistence)),
	)
	if s.LastError != "" {
		printLines(out, renderStatusLine("Last error", statusWarn, s.LastError, colorize))
	}
	if s.PersistError != "" {
		printLines(out, renderStatusLine("Persist", statusWarn, s.PersistError, colorize))
	}

	if len(status.Preflight) > 0 {
		printLines(out, "")
		printLines(out, renderSectionHeader("Preflight", colorize)...)
		for _, check := range status.Preflight {
			kind := statusOK
			if !check.Passed {
				kind = statusError
			}
			printLines(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
		}
	}
}

func renderRoomTable(rooms []api.RoomStatus) string {
	g := newGrid(num("#"), col("ID"), col("Name"), col("Type"), col("Priority"), num("Refs"), col("Inspected"))
	for i, room := range rooms {
		pos := strconv.Itoa(i + 1)
		if room.Current {
			pos += "*"
		}
		g.add(pos, room.ID, room.Name, room.Type, room.Priority, room.References, yesNo(room.Inspected))
	}
	return g.String()
}

func renderPlainRooms(rooms []api.Room) string {
	g := newGrid(num("#"), col("ID"), col("Name"), col("Type"), col("Priority"))
	for i, room := range rooms {
		g.add(i+1, room.ID, room.Name, room.Type, room.Priority)
	}
	return g.String()
}

// Finding, ignored and candidate tables number rows from zero because the
// API addresses them by index.
func renderFindingTable(findings []api.Finding) string {
	g := newGrid(num("#"), col("Room"), col("Type"), col("Location"), col("Severity"))
	for i, f := range findings {
		g.add(i, f.RoomName, f.Type, f.Location, f.Severity)
	}
	return g.String()
}

func renderIgnoredTable(entries []api.IgnoredFinding) string {
	g := newGrid(num("#"), col("Room"), col("Type"), col("Location"), col("Reason"))
	for i, e := range entries {
		g.add(i, e.RoomName, e.Type, e.Location, e.Reason)
	}
	return g.String()
}

func renderCandidateTable(candidates []api.Candidate) string {
	g := newGrid(num("#"), col("Type"), col("Location"), col("Severity"))
	for i, c := range candidates {
		g.add(i, c.Type, c.Location, c.Severity)
	}
	return g.String()
}

func settlementKind(kind string) statusKind {
	switch kind {
	case "precise", "trivial":
		return statusOK
	case "approximate":
		return statusWarn
	default:
		return statusInfo
	}
}

func renderSettlement(out io.Writer, s api.Settlement, colorize bool) {
	printLines(out, renderSectionHeader("Settlement", colorize)...)
	label := s.Kind
	if s.Kind == "pending" && s.PendingReason != "" {
		label += ": " + s.PendingReason
	}
	if s.Stale {
		label += " (stale)"
	}
	printLines(out, renderStatusLine("Kind", settlementKind(s.Kind), label, colorize))
	if s.Kind == "pending" {
		return
	}
	printLines(out,
		renderField("Deposit", report.FormatMoney(s.OriginalDeposit, s.Currency)),
		renderField("Deductions", report.FormatMoney(s.TotalDeductions, s.Currency)),
		renderField("Returned", report.FormatMoney(s.DepositReturn, s.Currency)),
	)
	if s.Summary != "" {
		printLines(out, renderField("Summary", s.Summary))
	}
	if len(s.LineItems) == 0 {
		return
	}
	g := newGrid(col("Item"), num("Amount"), col("Justification"))
	for _, line := range s.LineItems {
		g.add(line.Item, report.FormatMoney(line.Amount, s.Currency), line.Justification)
	}
	fmt.Fprintln(out, g)
}

func renderSession(out io.Writer, v api.SessionView, colorize bool) {
	printLines(out, renderSectionHeader("Session "+v.SessionID, colorize)...)
	printLines(out,
		renderField("Mode", v.Mode),
		renderField("State", v.State),
		renderField("Progress", fmt.Sprintf("%d/%d rooms (%.0f%%)", len(v.Inspected), len(v.Rooms), v.Progress)),
	)
	if v.CurrentRoom != nil {
		printLines(out, renderField("Current room", fmt.Sprintf("%s (%s)", v.CurrentRoom.Name, v.CurrentRoom.ID)))
	}
	if v.Deposit != nil {
		printLines(out, renderField("Deposit", fmt.Sprintf("%s (%s)", report.FormatMoney(v.Deposit.Amount, v.Deposit.Currency), v.Deposit.Source)))
	}
	if v.Quote != nil {
		printLines(out, renderField("Repair quote", report.FormatMoney(v.Quote.GrandTotal, v.Quote.Currency)))
	}
	if v.Advisory != "" {
		printLines(out, renderStatusLine("Advisory", statusWarn, v.Advisory, colorize))
	}
	for _, op := range []struct {
		name  string
		state api.OpState
	}{{"Scan", v.Ops.Scan}, {"Quote", v.Ops.Quote}, {"Settlement", v.Ops.Settlement}, {"Lease", v.Ops.Lease}} {
		if op.state.Status == "failed" {
			printLines(out, renderStatusLine(op.name, statusError, op.state.Error, colorize))
		}
	}

	if len(v.Rooms) > 0 {
		fmt.Fprintln(out, renderRoomTable(v.Rooms))
	}
	if len(v.Buffer) > 0 {
		printLines(out, "Buffered candidates:")
		fmt.Fprintln(out, renderCandidateTable(v.Buffer))
	}
	if len(v.Findings) > 0 {
		printLines(out, "Findings:")
		fmt.Fprintln(out, renderFindingTable(v.Findings))
	}
	if v.Settlement != nil {
		renderSettlement(out, *v.Settlement, colorize)
	}
}
