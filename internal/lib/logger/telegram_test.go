package logger

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendMessage(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

func TestTelegramHandlerForwardsErrors(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := &fakeSender{}

	lg := SetupTelegramHandler(base, sender, slog.LevelError).With(slog.String("mod", "test"))
	lg.Info("just info")
	lg.Error("store failed", slog.String("call_sid", "CA123"))

	assert.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, time.Second, 10*time.Millisecond)

	msg := sender.messages()[0]
	assert.Contains(t, msg, "ERROR: store failed")
	assert.Contains(t, msg, "mod: test")
	assert.Contains(t, msg, "call_sid: CA123")
	assert.Contains(t, buf.String(), "just info")
	assert.Contains(t, buf.String(), "store failed")
}

func TestSetupTelegramHandlerWithoutSender(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, SetupTelegramHandler(base, nil, slog.LevelError))
}
