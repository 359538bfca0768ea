package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/balance"
	employeeService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
	importService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func memoryOptions(t *testing.T, store *testutil.Store) *RootOptions {
	t.Helper()

	tx := store.Transactor()
	policy := attendance.DefaultPolicy()
	ledger := balanceService.NewLedger(tx, store.Attendance(), store.LeaveRequests(), store.Employees())
	attendanceSvc := attendanceService.NewAttendanceService(tx, policy, store.Attendance(), store.Employees(), ledger)
	jwtService, err := jwt.NewJWTService("cli-test-secret", "1h")
	require.NoError(t, err)
	local, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	files := file.NewFileService(local)

	backend := &Backend{
		Policy:    policy,
		Ledger:    ledger,
		Imports:   importService.NewImportService(tx, store.Employees(), attendanceSvc, ledger, files),
		Employees: employeeService.NewEmployeeService(store.Employees(), jwtService),
		Files:     files,
	}
	return &RootOptions{
		Connect: func(ctx context.Context) (*Backend, error) { return backend, nil },
		Policy:  func() (attendance.Policy, error) { return policy, nil },
	}
}

func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	opts := memoryOptions(t, testutil.NewStore())

	out, err := execute(t, opts, "calc", "--date", "2024-03-04", "--entry", "06:30", "--exit", "16:00")
	require.NoError(t, err)

	var resp attendance.CalculateHoursResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "07:00", resp.EffectiveEntry)
	assert.Equal(t, "8:30", resp.Net)
	assert.Equal(t, "-1:00", resp.Overtime)

	out, err = execute(t, opts, "calc", "--entry", "08:00", "--exit", "18:00", "-o", "yaml")
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, "0:00", fromYAML["overtime"])
	assert.Equal(t, true, fromYAML["lunch_deducted"])
}

func TestCalcCommand_Errors(t *testing.T) {
	opts := memoryOptions(t, testutil.NewStore())

	_, err := execute(t, opts, "calc", "--entry", "08:00")
	assert.Error(t, err)

	_, err = execute(t, opts, "calc", "--entry", "8h", "--exit", "18:00")
	assert.Error(t, err)

	_, err = execute(t, opts, "calc", "--entry", "08:00", "--exit", "18:00", "-o", "xml")
	assert.Error(t, err)
}

func TestCreateEmployeeAndImport(t *testing.T) {
	store := testutil.NewStore()
	opts := memoryOptions(t, store)

	out, err := execute(t, opts, "create-employee",
		"--username", "mgarcia", "--password", "password123",
		"--full-name", "María García", "--affiliation", "12345678")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "mgarcia"`)

	export := "Nº Afiliación:,,,,12345678\n" +
		"\"Lunes, 04 marzo 2024\"\n" +
		"06:30,Inicio de jornada\n" +
		"16:00,Finaliza la jornada\n"
	path := filepath.Join(t.TempDir(), "punches.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	out, err = execute(t, opts, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)
	assert.Contains(t, out, `"display": "-1:00"`)
	assert.Equal(t, 1, store.AttendanceCount())

	var first struct {
		StoredFile string `json:"stored_file"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.NotEmpty(t, first.StoredFile)

	// Replaying the archived upload reports the same key instead of a new copy.
	out, err = execute(t, opts, "import", "--archived", first.StoredFile)
	require.NoError(t, err)
	var replay struct {
		StoredFile string `json:"stored_file"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &replay))
	assert.Equal(t, first.StoredFile, replay.StoredFile)
	assert.Equal(t, 1, store.AttendanceCount())

	_, err = execute(t, opts, "import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = execute(t, opts, "import", "--archived", "../outside.csv")
	assert.Error(t, err)
}

func TestReconcileCommand(t *testing.T) {
	store := testutil.NewStore()
	store.AddProfile(employee.Profile{Username: "a", FullName: "A", Active: true, CachedBalance: 1})
	opts := memoryOptions(t, store)

	out, err := execute(t, opts, "reconcile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"drifted": 1}`, out)
}
