package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"Warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func TestConfValidate(t *testing.T) {
	c := &Conf{Output: OutputFile, Path: "/tmp/x"}
	require.NoError(t, c.Validate())
	assert.Equal(t, 100, c.RotateSize)
	assert.Equal(t, 10, c.RotateNum)
	assert.Equal(t, 7, c.KeepDays)
	assert.Equal(t, "rostersync.log", c.Filename)

	assert.Error(t, (&Conf{Output: OutputFile}).Validate())
	assert.Error(t, (&Conf{Output: "kafka"}).Validate())
	assert.NoError(t, SetDefaults().Validate())
}

func TestNewFileOutput(t *testing.T) {
	dir := t.TempDir()
	conf := SetDefaults()
	conf.Output = OutputFile
	conf.Path = dir
	conf.Level = "debug"

	log, err := New(conf)
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	log.Infow("hello", "k", "v")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, conf.Filename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "INFO")
}
