package browser

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	driverRelPath  = "chromedriver"
	browserRelDir  = "chrome-linux"
	browserBinName = "chrome"
)

// Config holds browser session configuration.
type Config struct {
	// WorkingDir is where the browser installation and its driver live.
	WorkingDir string

	WindowWidth     int
	WindowHeight    int
	PageLoadTimeout time.Duration
	ExtraFlags      []string

	// Fs is the filesystem used for binary discovery and permission
	// normalisation. Defaults to the OS filesystem.
	Fs afero.Fs
}

// DefaultConfig returns the configuration used by the monitor.
func DefaultConfig(workingDir string) Config {
	return Config{
		WorkingDir:      workingDir,
		WindowWidth:     1920,
		WindowHeight:    1080,
		PageLoadTimeout: 90 * time.Second,
	}
}

// DriverPath returns <workingdir>/chromedriver.
func (c Config) DriverPath() string {
	return filepath.Join(c.WorkingDir, driverRelPath)
}

// BrowserDir returns <workingdir>/chrome-linux.
func (c Config) BrowserDir() string {
	return filepath.Join(c.WorkingDir, browserRelDir)
}

// BinaryPath returns <workingdir>/chrome-linux/chrome.
func (c Config) BinaryPath() string {
	return filepath.Join(c.BrowserDir(), browserBinName)
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.WorkingDir)
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	if c.PageLoadTimeout <= 0 {
		c.PageLoadTimeout = d.PageLoadTimeout
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	return c
}

// stabilityFlags are passed to every browser instance on top of chromedp's
// defaults. Sandboxing, GPU and /dev/shm usage must be off on constrained
// hosts; the remaining flags keep timers and renderers from being throttled.
var stabilityFlags = map[string]interface{}{
	"headless":                               true,
	"no-sandbox":                             true,
	"disable-gpu":                            true,
	"disable-dev-shm-usage":                  true,
	"disable-background-timer-throttling":    true,
	"disable-backgrounding-occluded-windows": true,
	"disable-renderer-backgrounding":         true,
	"disable-ipc-flooding-protection":        true,
	"disable-extensions":                     true,
	"disable-default-apps":                   true,
	"disable-features":                       "TranslateUI,VizDisplayCompositor",
}
