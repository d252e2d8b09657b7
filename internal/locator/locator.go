// Package locator discovers the running League of Legends client and
// extracts the ephemeral credentials needed to talk to its local API.
package locator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/lolscout/agent/pkg/lcu"
	"github.com/shirou/gopsutil/v3/process"
)

// Reason classifies why acquire failed.
type Reason string

const (
	ReasonNotRunning      Reason = "not_running"
	ReasonParseError      Reason = "parse_error"
	ReasonPermissionError Reason = "permission_denied"
)

// Error wraps a locator failure with its Reason.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("locator: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("locator: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	processNames = []string{"LeagueClientUx.exe", "LeagueClientUx"}

	portRe  = regexp.MustCompile(`--app-port=(\d+)`)
	tokenRe = regexp.MustCompile(`--remoting-auth-token=([\w-]+)`)
)

// Locator finds the running client and yields credentials, never
// logging the token it extracts.
type Locator struct {
	lockfilePath func() (string, error)
	generation   uint64
}

// New returns a Locator using the platform-default lockfile location.
func New() *Locator {
	return &Locator{lockfilePath: defaultLockfilePath}
}

// Acquire locates the client and returns fresh Credentials, or an
// *Error classifying why it could not.
func (l *Locator) Acquire(ctx context.Context) (lcu.Credentials, error) {
	if creds, ok, err := l.fromProcessList(ctx); err != nil {
		return lcu.Credentials{}, err
	} else if ok {
		l.generation++
		creds.Generation = l.generation
		return creds, nil
	}

	if creds, ok, err := l.fromLockfile(); err != nil {
		return lcu.Credentials{}, err
	} else if ok {
		l.generation++
		creds.Generation = l.generation
		return creds, nil
	}

	return lcu.Credentials{}, &Error{Reason: ReasonNotRunning}
}

// fromProcessList is the Go analogue of lcu_detector.py's
// psutil.process_iter scan: find the client's command line and pull the
// port/token flags out of it with a regex, exactly as the original does.
func (l *Locator) fromProcessList(ctx context.Context) (lcu.Credentials, bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return lcu.Credentials{}, false, &Error{Reason: ReasonPermissionError, Err: err}
	}

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !matchesClientName(name) {
			continue
		}

		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			// Permission to enumerate but not to read this one process's
			// cmdline is common (elevated client, restricted OS); keep
			// scanning instead of failing the whole acquire.
			continue
		}

		port, token, ok := parseCmdline(cmdline)
		if !ok {
			continue
		}
		return lcu.Credentials{
			Host:      "127.0.0.1",
			Port:      port,
			AuthToken: token,
			Protocol:  "wss",
		}, true, nil
	}
	return lcu.Credentials{}, false, nil
}

func matchesClientName(name string) bool {
	for _, n := range processNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

func parseCmdline(cmdline string) (port uint16, token string, ok bool) {
	portMatch := portRe.FindStringSubmatch(cmdline)
	tokenMatch := tokenRe.FindStringSubmatch(cmdline)
	if portMatch == nil || tokenMatch == nil {
		return 0, "", false
	}
	p, err := strconv.ParseUint(portMatch[1], 10, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(p), tokenMatch[1], true
}

// fromLockfile falls back to the "name:pid:port:token:protocol" file the
// client writes next to its install when the command line can't be read.
func (l *Locator) fromLockfile() (lcu.Credentials, bool, error) {
	path, err := l.lockfilePath()
	if err != nil {
		return lcu.Credentials{}, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lcu.Credentials{}, false, nil
		}
		if errors.Is(err, os.ErrPermission) {
			return lcu.Credentials{}, false, &Error{Reason: ReasonPermissionError, Err: err}
		}
		return lcu.Credentials{}, false, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return lcu.Credentials{}, false, &Error{Reason: ReasonParseError, Err: errors.New("empty lockfile")}
	}

	fields := strings.Split(strings.TrimSpace(scanner.Text()), ":")
	if len(fields) != 5 {
		return lcu.Credentials{}, false, &Error{Reason: ReasonParseError, Err: fmt.Errorf("want 5 fields, got %d", len(fields))}
	}

	port, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return lcu.Credentials{}, false, &Error{Reason: ReasonParseError, Err: err}
	}

	return lcu.Credentials{
		Host:      "127.0.0.1",
		Port:      uint16(port),
		AuthToken: fields[3],
		Protocol:  fields[4],
	}, true, nil
}

func defaultLockfilePath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", errors.New("LOCALAPPDATA not set")
		}
		return filepath.Join(base, "Riot Games", "League of Legends", "lockfile"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "Riot Games", "League of Legends", "lockfile"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "league-of-legends", "lockfile"), nil
	}
}
