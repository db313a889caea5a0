package routetable

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedPlatform reports an operating system with no route source.
	ErrUnsupportedPlatform = errors.New("unsupported operating system")

	// ErrParseNotImplemented reports a platform whose route listing can only
	// be dumped as raw text. Callers are expected to fall back to Dump.
	ErrParseNotImplemented = errors.New("route table parsing not implemented")

	// ErrInvalidOutput reports route command output that is not valid UTF-8.
	ErrInvalidOutput = errors.New("route command output is not valid UTF-8")
)

// CommandError reports a route command that started but exited nonzero. It
// carries the text the command wrote to stderr, which is usually the only
// useful diagnostic netstat produces.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return fmt.Sprintf("%s: %s", e.Command, s)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Source produces the routing table for one platform. Exactly one Source is
// selected at startup and injected into the inspection layer, so parsing code
// never branches on the operating system.
//
// Routes returns the parsed table. On platforms where structured parsing is
// not implemented it returns ErrParseNotImplemented; Dump then provides the
// raw command output for display.
type Source interface {
	Name() string
	Routes() (*Table, error)
	Dump() (string, error)
}

// runRouteCommand executes the platform route command with no stdin and
// returns captured stdout and stderr. Variable for mocking in tests.
var runRouteCommand = func(name string, arg ...string) (stdout, stderr []byte, err error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.Command(name, arg...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// capture runs the command and applies the error contract shared by all
// sources: a spawn failure wraps the exec error, a nonzero exit becomes a
// CommandError carrying stderr. Run blocks until the process has exited with
// both streams drained, so no handles leak on either path.
func capture(name string, arg ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{name}, arg...), " ")
	slog.Debug("Running route command", "command", cmdline)
	stdout, stderr, err := runRouteCommand(name, arg...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CommandError{
				Command: cmdline,
				Stderr:  string(stderr),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("starting %s: %w", cmdline, err)
	}
	return stdout, nil
}

// strictDecode rejects output the parsers cannot safely consume.
func strictDecode(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", ErrInvalidOutput
	}
	return string(raw), nil
}

// lossyDecode replaces invalid UTF-8 so display-only dumps always render.
func lossyDecode(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}

// LinuxSource reads routes with `netstat -rn` and the Linux column layout.
type LinuxSource struct{}

func (LinuxSource) Name() string { return "netstat-linux" }

func (LinuxSource) Routes() (*Table, error) {
	raw, err := capture("netstat", "-rn")
	if err != nil {
		return nil, err
	}
	out, err := strictDecode(raw)
	if err != nil {
		return nil, err
	}
	return ParseLinux(out), nil
}

func (LinuxSource) Dump() (string, error) {
	raw, err := capture("netstat", "-rn")
	if err != nil {
		return "", err
	}
	return lossyDecode(raw), nil
}

// DarwinSource reads routes with `netstat -rn` and the sectioned BSD layout.
type DarwinSource struct{}

func (DarwinSource) Name() string { return "netstat-bsd" }

func (DarwinSource) Routes() (*Table, error) {
	raw, err := capture("netstat", "-rn")
	if err != nil {
		return nil, err
	}
	out, err := strictDecode(raw)
	if err != nil {
		return nil, err
	}
	return ParseDarwin(out), nil
}

func (DarwinSource) Dump() (string, error) {
	raw, err := capture("netstat", "-rn")
	if err != nil {
		return "", err
	}
	return lossyDecode(raw), nil
}

// WindowsSource can only dump the `route print` output verbatim; structured
// parsing is not implemented for the Windows table format.
type WindowsSource struct{}

func (WindowsSource) Name() string { return "route-print" }

func (WindowsSource) Routes() (*Table, error) {
	return nil, ErrParseNotImplemented
}

func (WindowsSource) Dump() (string, error) {
	raw, err := capture("route", "print")
	if err != nil {
		return "", err
	}
	return lossyDecode(raw), nil
}

// ForOS returns the route source for a GOOS value.
func ForOS(goos string) (Source, error) {
	switch goos {
	case "linux":
		return LinuxSource{}, nil
	case "darwin", "dragonfly", "freebsd", "netbsd", "openbsd":
		// The sectioned netstat format is shared across the BSDs
		// (but not tested outside macOS).
		return DarwinSource{}, nil
	case "windows":
		return WindowsSource{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
}

// Detect returns the route source for the running operating system.
func Detect() (Source, error) {
	return ForOS(runtime.GOOS)
}
