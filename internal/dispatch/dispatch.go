// Package dispatch opens the URLs the Trigger Engine decides to fire, in
// the user's default browser, after a configurable delay (§4.9).
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrCancelled is returned by Open when ctx is cancelled before the
// delay elapses; the caller treats this as "never opened", not a fault.
var ErrCancelled = errors.New("dispatch: cancelled before open")

// Dispatcher launches URLs via the platform's default-browser handler.
type Dispatcher struct {
	log *zap.Logger
}

// New returns a Dispatcher that logs failures through log.
func New(log *zap.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

// Open waits delay, then launches url in the default browser, unless ctx
// is cancelled first. Multiple Open calls from one draft update are
// meant to be launched concurrently by the caller (§4.9's "parallel
// intents from one update" rule) — Open itself blocks only its own
// caller.
func (d *Dispatcher) Open(ctx context.Context, url string, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-timer.C:
		}
	}

	cmd := launchCommand(url)
	if err := cmd.Start(); err != nil {
		d.log.Warn("dispatch: launch failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("dispatch: launch %s: %w", url, err)
	}
	// The launcher process is detached from us; we don't wait on it.
	go func() { _ = cmd.Wait() }()
	return nil
}

// launchCommand builds the platform-specific browser-open command. The
// darwin and default launchers run through a shell, so for them the URL
// is wrapped with shellQuote before it reaches the command string — the
// same single-quote escaping idiom the corpus uses to pass untrusted
// values through a shell safely. On windows rundll32 is started directly
// and receives the URL unquoted as its own argv element.
func launchCommand(url string) *exec.Cmd {
	safe := shellQuote(url)
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("sh", "-c", "open "+safe)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("sh", "-c", "xdg-open "+safe)
	}
}

// shellQuote wraps s in single quotes, escaping any embedded single
// quote, so it is always passed as one literal argv element regardless
// of what characters it contains.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
