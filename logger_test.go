package geolayer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_DefaultIsSilent(t *testing.T) {
	l := Logger()
	assert.NotNil(t, l)
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))

	SetLogger(custom)
	t.Cleanup(func() { SetLogger(nil) })

	assert.Same(t, custom, Logger())
	Logger().Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	SetLogger(nil)
	assert.NotSame(t, custom, Logger())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

type recordingSetter struct {
	logger *slog.Logger
}

func (r *recordingSetter) SetLogger(l *slog.Logger) { r.logger = l }

func TestPropagateLogger(t *testing.T) {
	target := &recordingSetter{}
	propagateLogger(target)
	assert.Same(t, Logger(), target.logger)

	assert.NotPanics(t, func() { propagateLogger(struct{}{}) })
	assert.NotPanics(t, func() { propagateLogger(nil) })
}
