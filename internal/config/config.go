package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

const DefaultModel = "claude-3-haiku-20240307"

// ModelSpec routes model identifiers with a given prefix to a provider and
// names the environment variable that holds its API key.
type ModelSpec struct {
	Prefix   string `yaml:"prefix"`
	Provider string `yaml:"provider"`
	KeyEnv   string `yaml:"key_env"`
	Endpoint string `yaml:"endpoint"`
	// Strip removes the prefix before the model name is sent upstream.
	Strip bool `yaml:"strip"`
}

type Config struct {
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	LogFile string `yaml:"log_file"`
	Verbose bool   `yaml:"verbose"`

	Model          string      `yaml:"model"`
	Models         []ModelSpec `yaml:"models"`
	GatewayURL     string      `yaml:"gateway_url"`
	TargetLanguage string      `yaml:"target_language"`

	// Prompts override the built-in instruction text per mode.
	Prompts struct {
		Flashcard string `yaml:"flashcard"`
		Explain   string `yaml:"explain"`
		Language  string `yaml:"language"`
	} `yaml:"prompts"`

	Render struct {
		MinScale         float64 `yaml:"min_scale"`
		MaxScale         float64 `yaml:"max_scale"`
		DefaultScale     float64 `yaml:"default_scale"`
		ScaleStep        float64 `yaml:"scale_step"`
		DevicePixelRatio float64 `yaml:"device_pixel_ratio"`
		CellWidth        float64 `yaml:"cell_width"`
		CellHeight       float64 `yaml:"cell_height"`
		LookaheadPixels  float64 `yaml:"lookahead_pixels"`
	} `yaml:"render"`

	Gate struct {
		Cooldown time.Duration `yaml:"cooldown"`
	} `yaml:"gate"`

	Gateway struct {
		Addr           string `yaml:"addr"`
		UploadDir      string `yaml:"upload_dir"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	} `yaml:"gateway"`

	Anki struct {
		Endpoint string `yaml:"endpoint"`
		Deck     string `yaml:"deck"`
	} `yaml:"anki"`

	CacheDir string `yaml:"cache_dir"`
}

// Default returns a configuration with every field populated.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path (a missing file is not an error), fills
// defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath is the config location used when no --config flag is given.
func DefaultPath() string {
	if env := os.Getenv("STUDYREADER_CONFIG"); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "studyreader.yaml"
	}
	return filepath.Join(dir, "studyreader", "config.yaml")
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Render.MinScale <= 0 || c.Render.MaxScale < c.Render.MinScale {
		return fmt.Errorf("invalid scale range [%g, %g]", c.Render.MinScale, c.Render.MaxScale)
	}
	if c.Render.CellWidth <= 0 || c.Render.CellHeight <= 0 {
		return fmt.Errorf("cell size must be positive")
	}
	return nil
}

// ModelFor returns the registry entry whose prefix matches model, preferring
// the longest prefix.
func (c *Config) ModelFor(model string) (ModelSpec, bool) {
	var (
		best  ModelSpec
		found bool
	)
	for _, spec := range c.Models {
		if !strings.HasPrefix(model, spec.Prefix) {
			continue
		}
		if !found || len(spec.Prefix) > len(best.Prefix) {
			best = spec
			found = true
		}
	}
	return best, found
}

// LookaheadRows converts the pixel look-ahead distance into terminal rows.
func (c *Config) LookaheadRows() int {
	rows := int(c.Render.LookaheadPixels / c.Render.CellHeight)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendJSON
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(dataDir(), defaultStoreFile(c.Storage.Backend))
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if len(c.Models) == 0 {
		c.Models = defaultModels()
	}
	if c.TargetLanguage == "" {
		c.TargetLanguage = "English"
	}
	if c.Render.MinScale == 0 {
		c.Render.MinScale = 0.5
	}
	if c.Render.MaxScale == 0 {
		c.Render.MaxScale = 5
	}
	if c.Render.DefaultScale == 0 {
		c.Render.DefaultScale = 1
	}
	if c.Render.ScaleStep == 0 {
		c.Render.ScaleStep = 0.25
	}
	if c.Render.DevicePixelRatio == 0 {
		c.Render.DevicePixelRatio = 2
	}
	if c.Render.CellWidth == 0 {
		c.Render.CellWidth = 8
	}
	if c.Render.CellHeight == 0 {
		c.Render.CellHeight = 16
	}
	if c.Render.LookaheadPixels == 0 {
		c.Render.LookaheadPixels = 500
	}
	if c.Gate.Cooldown == 0 {
		c.Gate.Cooldown = time.Second
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = "127.0.0.1:5000"
	}
	if c.Gateway.UploadDir == "" {
		c.Gateway.UploadDir = "uploads"
	}
	if c.Gateway.MaxUploadBytes == 0 {
		c.Gateway.MaxUploadBytes = 16 << 20
	}
	if c.Anki.Endpoint == "" {
		c.Anki.Endpoint = "http://localhost:8765"
	}
	if c.Anki.Deck == "" {
		c.Anki.Deck = "StudyReader"
	}
	if c.CacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(base, "studyreader", "documents")
		} else {
			c.CacheDir = filepath.Join(os.TempDir(), "studyreader-cache")
		}
	}
}

func (c *Config) applyEnv() {
	if env := os.Getenv("STUDYREADER_STORAGE_PATH"); env != "" {
		c.Storage.Path = env
	}
	if env := os.Getenv("STUDYREADER_STORAGE"); env != "" {
		c.UseBackend(env, os.Getenv("STUDYREADER_STORAGE_PATH") == "")
	}
	if env := os.Getenv("STUDYREADER_MODEL"); env != "" {
		c.Model = env
	}
	if env := os.Getenv("STUDYREADER_GATEWAY"); env != "" {
		c.GatewayURL = strings.TrimRight(env, "/")
	}
	if env := os.Getenv("STUDYREADER_LOG_FILE"); env != "" {
		c.LogFile = env
	}
	if env := os.Getenv("STUDYREADER_DPR"); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil && v > 0 {
			c.Render.DevicePixelRatio = v
		}
	}
	if env := os.Getenv("OLLAMA_HOST"); env != "" {
		for i := range c.Models {
			if c.Models[i].Provider == "ollama" {
				c.Models[i].Endpoint = strings.TrimRight(env, "/")
			}
		}
	}
}

// UseBackend switches the storage backend. With movePath set, the store
// file is renamed to the backend's default name in the same directory.
func (c *Config) UseBackend(backend string, movePath bool) {
	if backend != c.Storage.Backend && movePath {
		c.Storage.Path = filepath.Join(filepath.Dir(c.Storage.Path), defaultStoreFile(backend))
	}
	c.Storage.Backend = backend
}

func defaultModels() []ModelSpec {
	return []ModelSpec{
		{Prefix: "claude-", Provider: "anthropic", KeyEnv: "ANTHROPIC_API_KEY", Endpoint: "https://api.anthropic.com/v1"},
		{Prefix: "openrouter/", Provider: "openai", KeyEnv: "OPENROUTER_API_KEY", Endpoint: "https://openrouter.ai/api/v1", Strip: true},
		{Prefix: "gemini/", Provider: "openai", KeyEnv: "GEMINI_API_KEY", Endpoint: "https://generativelanguage.googleapis.com/v1beta/openai", Strip: true},
		{Prefix: "gpt-", Provider: "openai", KeyEnv: "OPENAI_API_KEY", Endpoint: "https://api.openai.com/v1"},
		{Prefix: "ollama/", Provider: "ollama", Endpoint: "http://localhost:11434", Strip: true},
	}
}

func defaultStoreFile(backend string) string {
	if backend == BackendSQLite {
		return "studyreader.db"
	}
	return "studyreader.json"
}

func dataDir() string {
	if env := os.Getenv("STUDYREADER_HOME"); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".studyreader")
	}
	return "."
}
