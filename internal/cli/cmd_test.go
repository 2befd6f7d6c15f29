package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/metrics"
	"github.com/alexanderramin/dutyroster/internal/repository"
	"github.com/alexanderramin/dutyroster/internal/scheduler"
	"github.com/alexanderramin/dutyroster/internal/service"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

const weekRosterYAML = `
horizon:
  weekdays: [2025-08-04, 2025-08-05, 2025-08-06, 2025-08-07]
  holidays: [2025-08-09]
doctors:
  - {name: att-a, role: attending, weekday_quota: 5, holiday_quota: 2}
  - {name: att-b, role: attending, weekday_quota: 5, holiday_quota: 2}
  - {name: res-a, role: resident, weekday_quota: 5, holiday_quota: 2}
  - {name: res-b, role: resident, weekday_quota: 5, holiday_quota: 2, preferred: [2025-08-09]}
`

// gapRosterYAML leaves the attending slot of Aug 5 without candidates.
const gapRosterYAML = `
horizon:
  weekdays: [2025-08-04, 2025-08-05]
doctors:
  - {name: att-a, role: attending, weekday_quota: 5, holiday_quota: 0, unavailable: [2025-08-05]}
  - {name: res-a, role: resident, weekday_quota: 5, holiday_quota: 0}
`

const attendingsOnlyYAML = `
horizon:
  weekdays: [2025-08-04]
doctors:
  - {name: att-a, role: attending, weekday_quota: 1, holiday_quota: 0}
`

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	rec := metrics.NewRecorder()

	return &App{
		Plans:       service.NewPlanService(uow, rec),
		Runs:        service.NewRunService(repository.NewSQLiteRunRepo(database), uow),
		Constraints: domain.DefaultConstraints(),
		Metrics:     rec,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestPlanCmd_PrintsRosterAndSaves(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", weekRosterYAML)

	out, err := executeCmd(t, app, "plan", path, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "ROSTER")
	assert.Contains(t, out, "res-b ★")
	assert.Contains(t, out, "No constraint violations.")
	assert.Contains(t, out, "saved as run")

	out, err = executeCmd(t, app, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "10/10")
}

func TestPlanCmd_JSON(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", weekRosterYAML)

	out, err := executeCmd(t, app, "plan", path, "--json", "--seed", "0")
	require.NoError(t, err)

	var got planJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.RunID)
	assert.Equal(t, 1.0, got.FillRate)
	assert.Equal(t, 10, got.TotalSlots)
	assert.Len(t, got.Assignments, 5)
	assert.Empty(t, got.RemainingGaps)
	assert.Empty(t, got.Violations)
	require.Len(t, got.Lineage, 3)
	assert.Equal(t, scheduler.MethodGreedy, got.Lineage[0].Method)
	assert.Equal(t, scheduler.MethodSwap, got.Lineage[2].Method)
	assert.Equal(t, got.Lineage[1].ID, got.Lineage[2].ParentID)
	assert.Equal(t, "res-b", got.Assignments[4].Resident)
}

func TestPlanCmd_MetricsOut(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", weekRosterYAML)
	metricsPath := filepath.Join(t.TempDir(), "dutyroster.prom")

	_, err := executeCmd(t, app, "plan", path, "--metrics-out", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dutyroster_runs_total")
	assert.Contains(t, string(data), `stopped_by="resolved"`)
}

func TestPlanCmd_FlagOverridesAreValidated(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", weekRosterYAML)

	_, err := executeCmd(t, app, "plan", path, "--beam-width", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beam width")
}

func TestPlanCmd_RequireFeasible(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", attendingsOnlyYAML)

	_, err := executeCmd(t, app, "plan", path, "--require-feasible")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInfeasible)
}

func TestPlanCmd_InvalidRosterFile(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", `
horizon:
  weekdays: [2025-08-04]
doctors:
  - {name: att-a, role: surgeon, weekday_quota: 1}
`)

	_, err := executeCmd(t, app, "plan", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestGapsCmd_ListsAndExplains(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", gapRosterYAML)

	out, err := executeCmd(t, app, "gaps", path, "--explain", "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "GAPS (1)")
	assert.Contains(t, out, "2025-08-05/attending")
	assert.Contains(t, out, "no_candidates")
	assert.Contains(t, out, "att-a")
	assert.Contains(t, out, string(scheduler.ReasonUnavailable))
	assert.Contains(t, out, "SUMMARY")
}

func TestFeasibilityCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "feasibility", writeFile(t, "ok.yaml", weekRosterYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "Supply covers demand")

	out, err = executeCmd(t, app, "feasibility", writeFile(t, "bad.yaml", attendingsOnlyYAML))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrInfeasible)
	assert.Contains(t, out, "no resident doctors")
}

func TestValidateCmd_ReportsViolations(t *testing.T) {
	app := testApp(t)
	roster := writeFile(t, "roster.yaml", gapRosterYAML)
	schedule := writeFile(t, "schedule.yaml", `
assignments:
  - {date: 2025-08-04, attending: att-a, resident: res-a}
  - {date: 2025-08-05, attending: att-a}
`)

	out, err := executeCmd(t, app, "validate", roster, "--schedule", schedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 violation(s)")
	assert.Contains(t, out, string(scheduler.ViolationUnavailable))
	assert.Contains(t, out, "2025-08-05/resident")
}

func TestValidateCmd_CleanSchedule(t *testing.T) {
	app := testApp(t)
	roster := writeFile(t, "roster.yaml", gapRosterYAML)
	schedule := writeFile(t, "schedule.yaml", `
assignments:
  - {date: 2025-08-04, attending: att-a, resident: res-a}
`)

	out, err := executeCmd(t, app, "validate", roster, "--schedule", schedule)
	require.NoError(t, err)
	assert.Contains(t, out, "No constraint violations.")
}

func TestValidateCmd_RequiresScheduleFlag(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "validate", writeFile(t, "roster.yaml", gapRosterYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule")
}

func TestRunsCmd_ShowByPrefixAndDelete(t *testing.T) {
	app := testApp(t)
	run := testutil.NewTestRun("0f1e2d3c-aaaa-bbbb-cccc-000000000001",
		testutil.WithAssignment("2025-08-04", domain.RoleAttending, "att-a"),
		testutil.WithGap("2025-08-04", domain.RoleResident, "no_candidates"),
	)
	require.NoError(t, app.Runs.Save(t.Context(), run))

	out, err := executeCmd(t, app, "runs", "show", "0f1e2d3c")
	require.NoError(t, err)
	assert.Contains(t, out, run.ID)
	assert.Contains(t, out, "att-a")

	out, err = executeCmd(t, app, "runs", "delete", "0f1e2d3c")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run")

	_, err = executeCmd(t, app, "runs", "show", run.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	out, err = executeCmd(t, app, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved runs")
}

func TestResolveCmd_RequiresTerminal(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "resolve", writeFile(t, "roster.yaml", weekRosterYAML))
	assert.ErrorIs(t, err, errNotInteractive)
}

func TestLoadRoster_WarningsGoToStderr(t *testing.T) {
	app := testApp(t)
	path := writeFile(t, "roster.yaml", strings.Replace(weekRosterYAML,
		"name: att-a, role: attending, weekday_quota: 5", "name: att-a, role: attending, weekday_quota: 25", 1))

	out, err := executeCmd(t, app, "feasibility", path)
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING")
}
