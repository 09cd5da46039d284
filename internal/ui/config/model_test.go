package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/credential"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
)

type verifyCall struct {
	url, token string
}

func newTestModel(t *testing.T, verifyErr error) (Model, *[]verifyCall, *credential.Keyring) {
	t.Helper()
	var calls []verifyCall
	ring := credential.New(keyring.NewArrayKeyring(nil))

	cfg := model.AppConfig{}
	cfg.Client.ServerURL = "http://localhost:8080"
	cfg.Client.ExportDir = "/tmp/export"
	cfg.Client.PollIntervalSec = 60
	cfg.Display.Theme = "default"

	m := New(context.Background(), cfg, Options{
		Path:  filepath.Join(t.TempDir(), "config.yaml"),
		Token: "old-token",
		Verify: func(_ context.Context, url, token string) (string, error) {
			calls = append(calls, verifyCall{url: url, token: token})
			return "Alice", verifyErr
		},
		Tokens: ring,
	}, keys.DefaultKeyMap(), 80, 24)
	return m, &calls, ring
}

func TestSaveVerifiesAndStoresToken(t *testing.T) {
	m, calls, ring := newTestModel(t, nil)
	m, _ = m.startForm()
	m.fb.serverURL = "https://notes.example.com/"
	m.fb.token = "new-token"
	m.fb.pollInterval = "30"

	cfg := m.buildConfig()
	m, cmd := m.Update(m.validateAndSave(cfg, "new-token")())
	require.NotNil(t, cmd)

	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.Equal(t, "https://notes.example.com", saved.Config.Client.ServerURL)
	assert.Equal(t, "new-token", saved.Token)
	assert.Equal(t, []verifyCall{{url: "https://notes.example.com", token: "new-token"}}, *calls)
	assert.Equal(t, ModeValidateResult, m.mode)
	assert.Contains(t, m.View(), "Authenticated as: Alice")

	token, err := ring.Get(credential.TokenKey("https://notes.example.com"))
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)

	loaded, err := model.LoadConfig(m.opts.Path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example.com", loaded.Client.ServerURL)
	assert.Equal(t, 30, loaded.Client.PollIntervalSec)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeView, m.mode)
	assert.Equal(t, 30, m.Config().Client.PollIntervalSec)
}

func TestUnchangedServerSkipsVerify(t *testing.T) {
	m, calls, _ := newTestModel(t, errors.New("unreachable"))
	m, _ = m.startForm()
	m.fb.exportDir = "/srv/export"

	m, cmd := m.Update(m.validateAndSave(m.buildConfig(), "")())
	require.NotNil(t, cmd)
	assert.Empty(t, *calls)
	assert.NoError(t, m.validErr)
	assert.Equal(t, "/srv/export", m.Config().Client.ExportDir)
}

func TestVerifyFailureDoesNotSave(t *testing.T) {
	m, calls, _ := newTestModel(t, errors.New("unauthorized"))
	m, _ = m.startForm()
	m.fb.serverURL = "https://other.example.com"

	m, cmd := m.Update(m.validateAndSave(m.buildConfig(), "")())
	assert.Nil(t, cmd)
	require.Len(t, *calls, 1)
	assert.Equal(t, "old-token", (*calls)[0].token)
	assert.EqualError(t, m.validErr, "unauthorized")
	assert.Contains(t, m.View(), "Settings not saved")

	_, err := os.Stat(m.opts.Path)
	assert.True(t, os.IsNotExist(err))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeForm, m.mode)
}

func TestViewKeys(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	assert.Contains(t, m.View(), "http://localhost:8080")
	assert.NotContains(t, m.View(), "old-token")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.NotNil(t, cmd)
	assert.True(t, m.Capturing())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Capturing())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ConfigDoneMsg{}, cmd())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("https://example.com"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("example.com"))
	assert.Error(t, validateURL("ftp://example.com"))

	assert.NoError(t, validateInterval("0"))
	assert.NoError(t, validateInterval("86400"))
	assert.Error(t, validateInterval("-1"))
	assert.Error(t, validateInterval("soon"))

	assert.Error(t, validateRequired("export directory")("  "))
}
