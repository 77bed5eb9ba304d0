package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"leadcrm/internal/app"
	"leadcrm/internal/config"
	"leadcrm/internal/domain/leadimport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:      "test",
		DatabaseURL: fmt.Sprintf("file:crmctl_%s?mode=memory&cache=shared", t.Name()),
		JWTSecret:   "test",
		JWTTTL:      time.Hour,
		Import: config.ImportConfig{
			MaxUploadBytes: 1 << 20,
			TokenStore:     config.TokenStoreInline,
			TokenTTL:       time.Minute,
			ValidateRows:   true,
			BatchSize:      50,
		},
	}
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func run(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (*app.App, func(), error) { return a, func() {}, nil }
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMigrate(t *testing.T) {
	a := newTestApp(t)
	out, err := run(t, a, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "database migrated")
}

func TestCreateAndDeleteUser(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	out, err := run(t, a, "create-user", "--username", "boss", "--password", "pw", "--staff")
	require.NoError(t, err)
	assert.Contains(t, out, "role=staff")

	_, err = run(t, a, "create-user", "--username", "boss", "--password", "pw")
	assert.Error(t, err)

	_, err = run(t, a, "create-user", "--username", "nopass")
	assert.Error(t, err)

	path := writeFile(t, "leads.csv", "Name,Email,Phone,Agent\nJane,jane@x.com,5551234,boss\n")
	_, err = run(t, a, "import", "--file", path, "--as", "boss")
	require.NoError(t, err)

	leads, err := a.Leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].AgentID)

	out, err = run(t, a, "delete-user", "boss")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted user boss")

	leads, err = a.Leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Nil(t, leads[0].AgentID)

	history, err := a.Import.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].UserID)

	_, err = run(t, a, "delete-user", "boss")
	assert.ErrorContains(t, err, "not found")
}

func TestImport_ExplicitMapping(t *testing.T) {
	a := newTestApp(t)
	path := writeFile(t, "leads.csv", "Name,E,Ph\nJane Doe,jane@x.com,555-1234\nJohn Roe,john@x.com,555-9876\n")

	out, err := run(t, a, "import", "--file", path, "--map", "full_name=Name", "--map", "email=E", "--map", "phone=Ph")
	require.NoError(t, err)
	assert.Contains(t, out, "read 2 rows")
	assert.Contains(t, out, "2 leads imported successfully.")

	leads, err := a.Leads.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestImport_DryRun(t *testing.T) {
	a := newTestApp(t)
	path := writeFile(t, "leads.csv", "Full Name,Email,Phone\nJane Doe,jane@x.com,555-1234\n")

	out, err := run(t, a, "import", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "using suggested mapping")
	assert.Contains(t, out, "dry run: 1 leads ready")

	leads, err := a.Leads.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestImport_ReportsInvalidRows(t *testing.T) {
	a := newTestApp(t)
	path := writeFile(t, "leads.csv", "Name,Email,Phone\nJane,jane@x.com,5551234\nBob,not-an-email,12\n")

	out, err := run(t, a, "import", "--file", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, leadimport.ErrRowsInvalid)
	assert.Contains(t, out, "row 2: email: Enter a valid email address.")
	assert.Contains(t, out, "row 2: phone: Enter a valid phone number.")
}

func TestImport_MissingMapping(t *testing.T) {
	a := newTestApp(t)
	path := writeFile(t, "leads.csv", "Name,E,Ph\nJane Doe,jane@x.com,555-1234\n")

	_, err := run(t, a, "import", "--file", path, "--map", "full_name=Name")
	assert.ErrorIs(t, err, leadimport.ErrMappingIncomplete)
}

func TestParseMapping(t *testing.T) {
	m, err := parseMapping(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = parseMapping([]string{"full_name=Full Name", "comment="})
	require.NoError(t, err)
	assert.Equal(t, leadimport.Mapping{"full_name": "Full Name", "comment": ""}, m)

	_, err = parseMapping([]string{"full_name"})
	assert.Error(t, err)

	_, err = parseMapping([]string{"nickname=Nick"})
	assert.ErrorContains(t, err, "unknown field")
}

func TestPruneImports(t *testing.T) {
	a := newTestApp(t)
	out, err := run(t, a, "prune-imports", "--older-than", "24h")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 0 import records")
}
