package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/anchor/internal/errors"
	"github.com/vango-dev/anchor/pkg/anchor"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "anchor.json"

	// DefaultPort is the default playground server port.
	DefaultPort = 7070

	// DefaultHost is the default playground server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is the default path of the Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultSendBuffer is the default number of queued messages per
	// WebSocket client.
	DefaultSendBuffer = 16
)

// DefaultPalette is the set of colors offered by the playground.
var DefaultPalette = []string{"red", "green", "blue", "yellow", "black", "white"}

// Config represents the complete anchor.json configuration.
type Config struct {
	// Server contains playground server configuration.
	Server ServerConfig `json:"server"`

	// Engine contains engine policy configuration.
	Engine EngineConfig `json:"engine"`

	// Live contains the playground's initial state.
	Live LiveConfig `json:"live"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains playground server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// MetricsPath is the path of the Prometheus endpoint. Set to "-" to
	// disable it.
	MetricsPath string `json:"metricsPath,omitempty"`
}

// EngineConfig contains engine policies.
type EngineConfig struct {
	// OrphanPolicy is one of "warn", "reject" or "panic".
	OrphanPolicy string `json:"orphanPolicy,omitempty"`

	// MaxPassDepth limits reentrant write nesting. 0 means unlimited.
	MaxPassDepth int `json:"maxPassDepth,omitempty"`
}

// LiveConfig contains the playground's initial state.
type LiveConfig struct {
	// InitialColor is the starting value of the color container.
	InitialColor string `json:"initialColor,omitempty"`

	// InitialBackground is the starting value of the background container.
	InitialBackground string `json:"initialBackground,omitempty"`

	// Palette lists the values clients may pick from.
	Palette []string `json:"palette,omitempty"`

	// SendBuffer is the number of messages queued per client before the
	// client is dropped as too slow.
	SendBuffer int `json:"sendBuffer,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for anchor.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
// Values missing from the file get their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("A101").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Run 'anchor serve' without --config to use defaults, or create the file")
		}
		return nil, errors.New("A103").WithLocation(path, 0, 0).Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		line, col := 0, 0
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			line, col = position(data, syntaxErr.Offset)
		case stderrors.As(err, &typeErr):
			line, col = position(data, typeErr.Offset)
		}
		return nil, errors.New("A103").
			WithLocation(path, line, col).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("A103").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("A103").WithLocation(path, 0, 0).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	if c.Engine.OrphanPolicy == "" {
		c.Engine.OrphanPolicy = anchor.OrphanWarn.String()
	}

	if len(c.Live.Palette) == 0 {
		c.Live.Palette = append([]string(nil), DefaultPalette...)
	}
	if c.Live.InitialColor == "" {
		c.Live.InitialColor = c.Live.Palette[0]
	}
	if c.Live.InitialBackground == "" {
		c.Live.InitialBackground = c.Live.Palette[len(c.Live.Palette)-1]
	}
	if c.Live.SendBuffer == 0 {
		c.Live.SendBuffer = DefaultSendBuffer
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(field, suggestion string) error {
		e := errors.New("A102").WithSubject("%s", field).WithSuggestion(suggestion)
		if c.configPath != "" {
			e.WithLocation(c.configPath, 0, 0)
		}
		return e
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", "Use a port between 1 and 65535")
	}
	if c.Server.MetricsPath != "-" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return invalid("server.metricsPath", `Use an absolute path like "/metrics", or "-" to disable metrics`)
	}
	if _, ok := anchor.ParseOrphanPolicy(c.Engine.OrphanPolicy); !ok {
		return invalid("engine.orphanPolicy", `Use one of "warn", "reject" or "panic"`)
	}
	if c.Engine.MaxPassDepth < 0 {
		return invalid("engine.maxPassDepth", "Use 0 for no limit or a positive depth")
	}
	if !slices.Contains(c.Live.Palette, c.Live.InitialColor) {
		return invalid("live.initialColor", "Use one of the palette values: "+strings.Join(c.Live.Palette, ", "))
	}
	if !slices.Contains(c.Live.Palette, c.Live.InitialBackground) {
		return invalid("live.initialBackground", "Use one of the palette values: "+strings.Join(c.Live.Palette, ", "))
	}
	if c.Live.SendBuffer < 1 {
		return invalid("live.sendBuffer", "Use a positive buffer size")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level", `Use one of "debug", "info", "warn" or "error"`)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", `Use "text" or "json"`)
	}
	return nil
}

// Address returns the address string for the playground server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the playground server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// MetricsEnabled reports whether the Prometheus endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Server.MetricsPath != "-"
}

// EngineOptions returns the engine options described by the configuration,
// followed by extra.
func (c *Config) EngineOptions(logger *slog.Logger, extra ...anchor.Option) []anchor.Option {
	policy, _ := anchor.ParseOrphanPolicy(c.Engine.OrphanPolicy)
	opts := []anchor.Option{
		anchor.WithLogger(logger),
		anchor.WithOrphanPolicy(policy),
		anchor.WithMaxPassDepth(c.Engine.MaxPassDepth),
	}
	return append(opts, extra...)
}

// Logger returns a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest anchor.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("A101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest anchor.json above
// the working directory. If there is none, it returns the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
