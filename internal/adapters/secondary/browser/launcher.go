// Package browser opens rendered decks in a local browser.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// Browser is a command able to open a URL
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// Launcher opens URLs with the first browser found on PATH
type Launcher struct {
	browsers []Browser
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
	logger   zerolog.Logger
}

// NewLauncher creates a launcher for the current platform
func NewLauncher(logger zerolog.Logger) *Launcher {
	return &Launcher{
		browsers: platformBrowsers(runtime.GOOS),
		lookPath: exec.LookPath,
		start:    startDetached,
		logger:   logger.With().Str("component", "browser").Logger(),
	}
}

// Open opens url without waiting for the browser to exit
func (l *Launcher) Open(url string) error {
	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	l.logger.Debug().Str("browser", browser.Name).Str("url", url).Msg("opening browser")

	if err := l.start(browser.Command, browser.Args(url)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}
	return nil
}

// Detect names the browser Open would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the first browser whose executable is on PATH
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers detected for this platform")
	}

	for i := range l.browsers {
		if _, err := l.lookPath(l.browsers[i].Command); err == nil {
			return &l.browsers[i], nil
		}
	}

	return nil, errors.New("no supported browsers found on this system")
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed browser table
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func urlOnly(url string) []string {
	return []string{url}
}

// platformBrowsers lists the openers tried on each platform, most generic first
func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Browser{
			{Name: "xdg-open", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		return []Browser{
			{Name: "Default", Command: "rundll32", Args: func(url string) []string {
				return []string{"url.dll,FileProtocolHandler", url}
			}},
		}
	default:
		return nil
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
