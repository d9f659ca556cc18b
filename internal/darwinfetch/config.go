package darwinfetch

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config struct
type Config struct {
	Values map[string]string
}

// Paths is the filesystem layout derived from the configuration.
type Paths struct {
	Root         string
	DataDir      string
	DownloadsDir string
	SettingsFile string
}

// Load darwinfetch.conf (KEY=VALUE lines) and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		for k, v := range values {
			cfg.Values[k] = v
		}
	case errors.Is(err, fs.ErrNotExist):
		// no config file is fine, defaults and environment apply
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Merge DARWINFETCH_* env overrides
	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge DARWINFETCH_* and R2_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DARWINFETCH_") || strings.HasPrefix(env, "R2_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

// initConfig applies global switches and returns the directory layout.
func initConfig(cfg *Config) Paths {
	Debug = cfg.Values["DARWINFETCH_DEBUG"] == "1"

	if tool := cfg.Values["DARWINFETCH_RECOVERY_TOOL"]; tool != "" {
		recoveryTool = tool
	}

	root := cfg.Values["DARWINFETCH_ROOT"]
	if root == "" {
		root = "."
	}
	p := Paths{
		Root:         root,
		DataDir:      filepath.Join(root, "data"),
		DownloadsDir: filepath.Join(root, "downloads"),
	}
	p.SettingsFile = filepath.Join(p.DataDir, "config.json")
	debugf("=> Data directory: %s, downloads: %s\n", p.DataDir, p.DownloadsDir)
	return p
}

// RemoteURL returns the canonical remote document for kind.
func (c *Config) RemoteURL(kind Kind) string {
	if u := c.Values["DARWINFETCH_REMOTE_"+strings.ToUpper(string(kind))]; u != "" {
		return u
	}
	base := remoteBase
	if b := c.Values["DARWINFETCH_REMOTE_BASE"]; b != "" {
		base = strings.TrimRight(b, "/")
	}
	return base + "/" + kind.FileName()
}

// Remotes returns the remote URL of every kind.
func (c *Config) Remotes() map[Kind]string {
	m := make(map[Kind]string, len(AllKinds))
	for _, k := range AllKinds {
		m[k] = c.RemoteURL(k)
	}
	return m
}

// Timeout is the overall per-request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	raw := c.Values["DARWINFETCH_TIMEOUT"]
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		log.Printf("Warning: ignoring invalid DARWINFETCH_TIMEOUT %q", raw)
		return 0
	}
	return time.Duration(secs) * time.Second
}

// HasR2 reports whether R2 credentials are configured.
func (c *Config) HasR2() bool {
	return c.Values["R2_ACCOUNT_ID"] != "" && c.Values["R2_ACCESS_KEY_ID"] != "" &&
		c.Values["R2_SECRET_ACCESS_KEY"] != ""
}
