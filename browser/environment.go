package browser

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
)

// checkBinaries verifies that both the driver and the browser binary exist.
func checkBinaries(fs afero.Fs, cfg Config) error {
	required := []struct {
		kind string
		path string
	}{
		{"browser driver", cfg.DriverPath()},
		{"browser binary", cfg.BinaryPath()},
	}

	for _, r := range required {
		if _, err := fs.Stat(r.path); err != nil {
			return &EnvironmentError{Kind: r.kind, Path: r.path, Err: err}
		}
	}
	return nil
}

// normalizePermissions makes the driver and every file of the browser
// installation world-executable and writable. Sandboxed runtimes often
// unpack archives without the execute bit. Failures are logged per file and
// never abort the session.
func normalizePermissions(ctx context.Context, fs afero.Fs, cfg Config, log logger.Logger) int {
	adjusted := 0

	log.Info(ctx, "setting permissions for browser driver", map[string]interface{}{
		"path": cfg.DriverPath(),
		"mode": "0777",
	})
	if err := fs.Chmod(cfg.DriverPath(), 0o777); err != nil {
		log.Warn(ctx, "could not set permissions", map[string]interface{}{
			"path":  cfg.DriverPath(),
			"error": err.Error(),
		})
	} else {
		adjusted++
	}

	dir := cfg.BrowserDir()
	log.Info(ctx, "setting permissions for browser installation", map[string]interface{}{
		"path": dir,
	})
	walkErr := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn(ctx, "could not inspect path", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if err := fs.Chmod(path, 0o777); err != nil {
			log.Warn(ctx, "could not set permissions", map[string]interface{}{
				"path":  filepath.ToSlash(path),
				"error": err.Error(),
			})
			return nil
		}
		adjusted++
		return nil
	})
	if walkErr != nil {
		log.Warn(ctx, "browser installation walk failed", map[string]interface{}{
			"path":  dir,
			"error": walkErr.Error(),
		})
	}

	return adjusted
}
