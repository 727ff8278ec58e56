package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"chronotrakr/internal/config"
)

func TestNewApp(t *testing.T) {
	mock := newMockBusinessAPI()
	app := NewApp(mock)

	assert.NotNil(t, app)
	assert.Equal(t, mock, app.businessAPI)
	assert.NotNil(t, app.config)
	assert.Equal(t, os.Stdout, app.out)
	assert.Equal(t, os.Stderr, app.errOut)
	assert.NotNil(t, app.logger)
	assert.NotNil(t, app.isInteractive)
}

func TestNewAppWithConfig_Options(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Display.Color = config.ColorAlways
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	app := NewAppWithConfig(newMockBusinessAPI(), cfg,
		WithOutput(out, errOut),
		WithInput(strings.NewReader("")),
	)

	assert.Same(t, cfg, app.config)
	assert.Equal(t, out, app.out)
	assert.Equal(t, errOut, app.errOut)
	assert.True(t, app.styles.Enabled())
	assert.False(t, app.isInteractive(), "a strings.Reader is not a terminal")
}

func TestNewAppWithConfig_NilConfig(t *testing.T) {
	app := NewAppWithConfig(newMockBusinessAPI(), nil)
	assert.Equal(t, config.NewConfig().Application.Timeout, app.config.Application.Timeout)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "01234567", shortID("0123456789abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}
