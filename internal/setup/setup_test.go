package setup

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/reportdeck/internal/config"
)

func newInitializer(t *testing.T, opts Options) (*Initializer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("CHROME_PATH", "")
	var out bytes.Buffer
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config", "reportdeck.yaml")
	}
	opts.Out = &out
	i := New(opts)
	i.lookPath = func(string) (string, error) { return "", stderrors.New("not found") }
	return i, &out
}

func TestRun_CreatesWithYes(t *testing.T) {
	i, out := newInitializer(t, Options{Yes: true})

	result, err := i.Run()
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, result.Success(), result.Errors)
	assert.FileExists(t, result.Path)
	require.NotNil(t, result.Config)
	assert.Equal(t, config.Default().Server.Port, result.Config.Server.Port)

	// default formats include pdf and no Chrome is available
	assert.NotEmpty(t, result.Warnings)

	i.Print(result)
	assert.Contains(t, out.String(), "(created)")
	assert.Contains(t, out.String(), "Configuration is valid")
}

func TestRun_MissingNonInteractive(t *testing.T) {
	i, _ := newInitializer(t, Options{})

	result, err := i.Run()
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.False(t, result.Success())
	assert.NoFileExists(t, result.Path)
	assert.NotEmpty(t, result.Suggestions)
}

func TestRun_InteractiveConfirm(t *testing.T) {
	for _, answer := range []bool{true, false} {
		i, _ := newInitializer(t, Options{Interactive: true})
		asked := ""
		i.confirm = func(path string) (bool, error) {
			asked = path
			return answer, nil
		}

		result, err := i.Run()
		require.NoError(t, err)
		assert.Equal(t, i.opts.ConfigPath, asked)
		assert.Equal(t, answer, result.Created)
	}
}

func TestRun_ConfirmError(t *testing.T) {
	i, _ := newInitializer(t, Options{Interactive: true})
	i.confirm = func(string) (bool, error) { return false, stderrors.New("no tty") }

	_, err := i.Run()
	assert.Error(t, err)
}

func TestRun_InvalidExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reportdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: -1
export:
  formats: [docx]
report:
  content_file: missing-report.yaml
`), 0644))

	i, out := newInitializer(t, Options{ConfigPath: path})
	result, err := i.Run()
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
	assert.Empty(t, result.Warnings, "pdf is not requested")

	i.Print(result)
	assert.Contains(t, out.String(), "problem(s)")
}

func TestRun_UnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reportdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0644))

	i, _ := newInitializer(t, Options{ConfigPath: path})
	result, err := i.Run()
	require.NoError(t, err)
	assert.Nil(t, result.Config)
	assert.Len(t, result.Errors, 1)
}

func TestFindChrome(t *testing.T) {
	i, _ := newInitializer(t, Options{})
	cfg := config.Default()
	assert.Empty(t, i.findChrome(cfg))

	i.lookPath = func(name string) (string, error) {
		if name == "chromium" {
			return "/usr/bin/chromium", nil
		}
		return "", stderrors.New("not found")
	}
	assert.Equal(t, "/usr/bin/chromium", i.findChrome(cfg))

	bin := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(bin, nil, 0755))
	cfg.Export.ChromePath = bin
	assert.Equal(t, bin, i.findChrome(cfg))
}
