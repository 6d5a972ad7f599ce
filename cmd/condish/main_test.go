package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"condish/internal/api"
	"condish/internal/daemon"
	"condish/internal/floorplan"
	"condish/internal/inspection"
	"condish/internal/logging"
	"condish/internal/testsupport"
	"condish/internal/workflow"
)

type stubBackend struct{}

func (stubBackend) ParseFloorPlan(context.Context, inspection.Image) (floorplan.RawPlan, error) {
	return floorplan.RawPlan{Rooms: []floorplan.RawRoom{{Type: "kitchen"}}}, nil
}

func (stubBackend) Analyze(context.Context, inspection.ScanTicket) (inspection.AnalysisResult, error) {
	return inspection.AnalysisResult{
		Status:  inspection.AnalysisOK,
		Damages: []inspection.DamageCandidate{{Type: "crack", Location: "north wall", Severity: inspection.SeverityMajor}},
	}, nil
}

func (stubBackend) Quote(_ context.Context, t inspection.QuoteTicket) (inspection.RepairQuote, error) {
	return inspection.RepairQuote{GrandTotal: 300, Currency: t.Currency}, nil
}

func (stubBackend) ComputeDeductions(context.Context, inspection.SettlementTicket) (*inspection.EstimatorResult, error) {
	return nil, errors.New("estimator offline")
}

func (stubBackend) ExtractLease(context.Context, inspection.Image) (inspection.LeaseInfo, error) {
	return inspection.LeaseInfo{DepositAmount: 1200, DepositCurrency: "USD", TenantName: "Sam"}, nil
}

type cliTestEnv struct {
	baseDir    string
	configPath string
	daemon     *daemon.Daemon
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	manager := workflow.NewManager(cfg, workflow.FromBackend(stubBackend{}), logging.NewNop())
	d, err := daemon.New(cfg, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	fileCfg := *cfg
	fileCfg.Paths.APIBind = d.Addr()
	data, err := toml.Marshal(fileCfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "condish.toml")
	testsupport.WriteFile(t, configPath, data)

	return &cliTestEnv{baseDir: base, configPath: configPath, daemon: d}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (env *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := env.run(t, args...)
	if err != nil {
		t.Fatalf("condish %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestInspectionWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)

	roomFile := filepath.Join(env.baseDir, "rooms.yaml")
	testsupport.WriteFile(t, roomFile, []byte("- id: hall\n  type: hallway\n- id: bath\n  name: Guest Bath\n  type: bathroom\n"))
	photo := testsupport.WriteFile(t, filepath.Join(env.baseDir, "frame.png"), testsupport.PNGHeader)

	requireContains(t, env.mustRun(t, "rooms", "load", "--file", roomFile), "Loaded 2 rooms")
	requireContains(t, env.mustRun(t, "rooms", "show", "bath"), "Toilet")
	requireContains(t, env.mustRun(t, "inspect", "start"), "hall")
	requireContains(t, env.mustRun(t, "inspect", "scan", photo), "1 buffered")
	requireContains(t, env.mustRun(t, "inspect", "complete"), "Completed Hallway")
	requireContains(t, env.mustRun(t, "inspect", "skip"), "Guest Bath")
	requireContains(t, env.mustRun(t, "findings", "list"), "north wall")
	requireContains(t, env.mustRun(t, "deposit", "set", "1000", "usd"), "1,000.00")
	requireContains(t, env.mustRun(t, "quote"), "300.00")

	out := env.mustRun(t, "settlement", "show", "--json")
	var settlement api.Settlement
	if err := json.Unmarshal([]byte(out), &settlement); err != nil {
		t.Fatalf("decode settlement: %v\n%s", err, out)
	}
	if settlement.Kind != "approximate" || settlement.DepositReturn != 700 {
		t.Fatalf("unexpected settlement %+v", settlement)
	}

	reportPath := filepath.Join(env.baseDir, "out", "report.xlsx")
	requireContains(t, env.mustRun(t, "report", "export", "--out", reportPath), reportPath)
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("report is not an xlsx container")
	}
	requireContains(t, env.mustRun(t, "report", "show"), "Deposit return:   USD 700.00")
}

func TestIgnoreAndRestoreFinding(t *testing.T) {
	env := setupCLITestEnv(t)
	photo := testsupport.WriteFile(t, filepath.Join(env.baseDir, "frame.jpg"), []byte("jpeg bytes"))

	env.mustRun(t, "floorplan", "parse", photo)
	env.mustRun(t, "inspect", "start")
	env.mustRun(t, "inspect", "scan", photo)
	env.mustRun(t, "inspect", "complete")

	requireContains(t, env.mustRun(t, "findings", "ignore", "--type", "Crack", "--location", "North Wall", "--room", "room_1", "--reason", "pre-existing"), "Ignored crack")
	view := env.session(t)
	if len(view.Findings) != 0 || len(view.Ignored) != 1 {
		t.Fatalf("expected the finding to move to ignored, got %+v", view)
	}

	requireContains(t, env.mustRun(t, "findings", "restore", "0"), "Restored crack")
	requireContains(t, env.mustRun(t, "findings", "remove", "0"), "Removed crack")
	if view := env.session(t); len(view.Findings) != 0 || len(view.Ignored) != 0 {
		t.Fatalf("expected an empty ledger, got %+v", view)
	}
}

func TestLeaseKeepsManualDeposit(t *testing.T) {
	env := setupCLITestEnv(t)
	lease := testsupport.WriteFile(t, filepath.Join(env.baseDir, "lease.pdf"), testsupport.PDFHeader)

	env.mustRun(t, "deposit", "set", "900")
	requireContains(t, env.mustRun(t, "lease", "extract", lease), "kept the manually entered deposit")
	if dep := env.session(t).Deposit; dep == nil || dep.Amount != 900 {
		t.Fatalf("expected manual deposit to win, got %+v", dep)
	}

	requireContains(t, env.mustRun(t, "session", "reset", "--full"), "(full)")
	requireContains(t, env.mustRun(t, "lease", "extract", lease), "applied to the session")
}

func (env *cliTestEnv) session(t *testing.T) api.SessionView {
	t.Helper()
	out := env.mustRun(t, "session", "show", "--json")
	var view api.SessionView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode session: %v\n%s", err, out)
	}
	return view
}

func TestStatusAndErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "status", "--json")
	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.Session.SessionID == "" {
		t.Fatalf("unexpected status %+v", status)
	}
	requireContains(t, env.mustRun(t, "status"), "== Preflight ==")

	if _, err := env.run(t, "rooms", "show", "attic"); err == nil {
		t.Fatal("expected unknown room to fail")
	}
	if _, err := env.run(t, "inspect", "skip"); err == nil {
		t.Fatal("expected skip before start to fail")
	}
	if _, err := env.run(t, "session", "mode", "sideways"); err == nil {
		t.Fatal("expected invalid mode to fail")
	}

	_, err := env.run(t, "--api", "127.0.0.1:1", "status")
	if err == nil || !strings.Contains(err.Error(), "condishd") {
		t.Fatalf("expected a start-the-daemon hint, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	target := filepath.Join(base, "config.toml")
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out.String(), "Wrote sample configuration")

	cmd = newRootCommand()
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", target, "config", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out.String(), "Configuration valid")

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestLogsCommandFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	data, err := toml.Marshal(*cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := testsupport.WriteFile(t, filepath.Join(base, "condish.toml"), data)
	testsupport.WriteFile(t, cfg.LogPath(), []byte(strings.Join([]string{
		"2026-03-14 10:00:00 INFO [daemon] – condish daemon started",
		"2026-03-14 10:00:01 WARN [workflow-manager] – analyzer failed room_id=hall event_type=collaborator_failed",
		"2026-03-14 10:00:02 INFO [workflow-manager] – room completed room_id=hall",
		"",
	}, "\n")))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "logs", "--level", "warn"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("logs: %v", err)
	}
	if got := strings.TrimSpace(out.String()); !strings.Contains(got, "analyzer failed") || strings.Contains(got, "room completed") {
		t.Fatalf("unexpected filtered output:\n%s", got)
	}

	cmd = newRootCommand()
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "logs", "-n", "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("logs: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "2026-03-14 10:00:02 INFO [workflow-manager] – room completed room_id=hall" {
		t.Fatalf("unexpected tail output %q", got)
	}
}
