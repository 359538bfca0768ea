package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/importer"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/balance"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/service/file"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	store   *testutil.Store
	storage *storage.LocalStorage
	root    string
	service importer.ImportService
	admin   employee.Actor
	worker  employee.Profile
}

func newImportFixture(t *testing.T) importFixture {
	t.Helper()

	store := testutil.NewStore()
	tx := store.Transactor()
	ledger := balanceService.NewLedger(tx, store.Attendance(), store.LeaveRequests(), store.Employees())
	attendanceSvc := attendanceService.NewAttendanceService(tx, attendance.DefaultPolicy(), store.Attendance(), store.Employees(), ledger)

	root := t.TempDir()
	local, err := storage.NewLocalStorage(root, "http://localhost:8080/files")
	require.NoError(t, err)

	affiliation := "12345678"
	worker := store.AddProfile(employee.Profile{
		Username:          "mgarcia",
		FullName:          "María García",
		AffiliationNumber: &affiliation,
		AccessLevel:       employee.LevelEmployee,
		Active:            true,
	})
	admin := store.AddProfile(employee.Profile{
		Username:    "admin",
		FullName:    "Administrador",
		AccessLevel: employee.LevelSuperadmin,
		Active:      true,
	})

	return importFixture{
		store:   store,
		storage: local,
		root:    root,
		service: NewImportService(tx, store.Employees(), attendanceSvc, ledger, file.NewFileService(local)),
		admin:   admin.Actor(),
		worker:  worker,
	}
}

const punchExport = "Informe de jornada\n" +
	"Nº Afiliación:,,,,12345678\n" +
	"\"Viernes, 01 marzo 2024\"\n" +
	"08:00,Inicio de jornada\n" +
	"13:00,Pausa de jornada (comida)\n" +
	"13:30,Reanuda la jornada\n" +
	"18:00,Finaliza la jornada\n" +
	"\"Lunes, 04 marzo 2024\"\n" +
	"06:30,Inicio de jornada\n" +
	"16:00,Finaliza la jornada\n" +
	"\"Martes, 05 marzo 2024\"\n" +
	"09:00,Inicio de jornada\n" +
	"\"Miércoles, 06 marzo 2024\"\n" +
	"08:00,Inicio de jornada\n" +
	"99:10,Finaliza la jornada\n" +
	"RESUMEN\n" +
	"\"Jueves, 07 marzo 2024\"\n" +
	"08:00,Inicio de jornada\n" +
	"18:00,Finaliza la jornada\n"

func csvRequest(body string) importer.ImportRequest {
	return importer.ImportRequest{
		File:     bytes.NewReader([]byte(body)),
		Filename: "marzo.csv",
	}
}

func TestRunImport_StoresEveryDay(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	report, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.NoError(t, err)

	assert.Equal(t, f.worker.ID, report.EmployeeID)
	assert.Equal(t, "12345678", report.AffiliationNumber)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 2, report.Incomplete)
	// two forced exits plus the unreadable punch time
	assert.Len(t, report.SoftErrors, 3)
	assert.Equal(t, 4, f.store.AttendanceCount())

	// 0h on the 1st, -1h on the 4th, incomplete days add nothing
	assert.Equal(t, -time.Hour, report.Balance)
	assert.Equal(t, -time.Hour, f.store.Profile(f.worker.ID).CachedBalance)

	day5, err := f.store.Attendance().GetByEmployeeAndDate(ctx, f.worker.ID, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, day5.ForcedExit)
	assert.Nil(t, day5.NetDuration)
	assert.Zero(t, day5.OvertimeDelta)

	require.NotEmpty(t, report.StoredFile)
	assert.Regexp(t, `^imports/\d{4}/\d{2}/[0-9a-f-]{36}\.csv$`, report.StoredFile)
	ok, err := f.storage.Exists(ctx, report.StoredFile)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunImport_IsIdempotent(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	first, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.NoError(t, err)
	second, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.NoError(t, err)

	assert.Equal(t, first.Completed, second.Completed)
	assert.Equal(t, first.Balance, second.Balance)
	assert.Equal(t, 4, f.store.AttendanceCount())
}

func TestRunImport_RollsBackOnWriteFailure(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	boom := errors.New("connection reset")
	f.store.FailUpsert = func(a attendance.Attendance) error {
		if a.Date.Day() == 4 {
			return boom
		}
		return nil
	}

	_, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.ErrorIs(t, err, boom)
	assert.Zero(t, f.store.AttendanceCount())
	assert.Zero(t, f.store.Profile(f.worker.ID).CachedBalance)
	assert.Empty(t, archivedFiles(t, f.root), "upload of a failed import must not stay archived")
}

func TestRunImport_RefreshesBalanceOnce(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	report, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.NoError(t, err)
	require.Equal(t, 4, f.store.AttendanceCount())

	assert.Equal(t, 1, f.store.BalanceWrites)
	assert.Equal(t, report.Balance, f.store.Profile(f.worker.ID).CachedBalance)
}

func TestRunImport_ReplayKeepsSingleArchive(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	first, err := f.service.RunImport(ctx, f.admin, csvRequest(punchExport))
	require.NoError(t, err)
	require.NotEmpty(t, first.StoredFile)

	replay := func() importer.ImportRequest {
		rc, err := f.storage.Download(ctx, first.StoredFile)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return importer.ImportRequest{
			File:       bytes.NewReader(data),
			Filename:   "marzo.csv",
			ArchivedAs: first.StoredFile,
		}
	}

	second, err := f.service.RunImport(ctx, f.admin, replay())
	require.NoError(t, err)
	assert.Equal(t, first.StoredFile, second.StoredFile)
	assert.Equal(t, first.Balance, second.Balance)
	assert.Len(t, archivedFiles(t, f.root), 1)

	// A replay that fails leaves the original upload in place.
	f.store.FailUpsert = func(attendance.Attendance) error { return errors.New("connection reset") }
	_, err = f.service.RunImport(ctx, f.admin, replay())
	require.Error(t, err)
	ok, err := f.storage.Exists(ctx, first.StoredFile)
	require.NoError(t, err)
	assert.True(t, ok)
}

// archivedFiles lists every file kept under the storage root.
func archivedFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRunImport_FatalErrors(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor employee.Actor
		req   importer.ImportRequest
		want  error
	}{
		{
			name:  "not privileged",
			actor: f.worker.Actor(),
			req:   csvRequest(punchExport),
			want:  employee.ErrPermissionDenied,
		},
		{
			name:  "unknown affiliation number",
			actor: f.admin,
			req:   csvRequest("Nº Afiliación: 999\n\"Viernes, 01 marzo 2024\"\n"),
			want:  importer.ErrEmployeeNotMatched,
		},
		{
			name:  "no affiliation number",
			actor: f.admin,
			req:   csvRequest("\"Viernes, 01 marzo 2024\"\n08:00,Inicio de jornada\n"),
			want:  importer.ErrAffiliationMissing,
		},
		{
			name:  "corrupt spreadsheet",
			actor: f.admin,
			req: importer.ImportRequest{
				File:     bytes.NewReader([]byte("garbage")),
				Filename: "marzo.xlsx",
			},
			want: importer.ErrCorruptInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RunImport(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.AttendanceCount())
		})
	}
}

func TestRunImport_RejectsUnknownFormat(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.service.RunImport(context.Background(), f.admin, importer.ImportRequest{
		File:     bytes.NewReader([]byte("x")),
		Filename: "marzo.pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}
