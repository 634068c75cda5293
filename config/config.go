// Package config holds ajer's settings: the config file, overridden by
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Flags, set by the cmd package. Empty values leave the file's settings
// alone.
var (
	ConfigFile  string
	Network     string
	Contract    string
	Keystore    string
	WalletURL   string
	LogMode     string
	AutoApprove bool
)

const (
	LogProduction  = "production"
	LogDevelopment = "development"
	LogOff         = "off"
)

// Duration reads toml strings such as "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Prices are in native token units, "0.5" means half a token.
type Prices struct {
	Short  string `toml:"short"`
	Medium string `toml:"medium"`
	Long   string `toml:"long"`
}

type Config struct {
	// Network is the target network, by name or chain id.
	Network  string `toml:"network"`
	Contract string `toml:"contract"`

	// Keystore is the key file of the local wallet. WalletURL, when set,
	// points at a wallet daemon instead.
	Keystore       string `toml:"keystore"`
	WalletURL      string `toml:"wallet_url"`
	WalletChain    string `toml:"wallet_chain"`
	WalletChainDir string `toml:"wallet_chain_dir"`
	// NetworkDir holds extra network definitions, one json file each.
	NetworkDir string `toml:"network_dir"`

	Prices          Prices   `toml:"prices"`
	RefreshDelay    Duration `toml:"refresh_delay"`
	PollInterval    Duration `toml:"poll_interval"`
	ReadConcurrency int      `toml:"read_concurrency"`

	Log string `toml:"log"`
}

// Dir is where ajer keeps its files, ~/.ajer.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ajer"
	}
	return filepath.Join(home, ".ajer")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

func Default() Config {
	return Config{
		Network:         "mumbai",
		Contract:        "0xa801FD013141ECF63E08003aC669a495e2269d1A",
		WalletChain:     "mainnet",
		WalletChainDir:  filepath.Join(Dir(), "wallet", "chains"),
		NetworkDir:      filepath.Join(Dir(), "networks"),
		Prices:          Prices{Short: "0.5", Medium: "0.3", Long: "0.1"},
		RefreshDelay:    Duration{2 * time.Second},
		PollInterval:    Duration{2 * time.Second},
		ReadConcurrency: 8,
		Log:             LogOff,
	}
}

// Load reads path over the defaults. A missing file just yields the
// defaults, unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("couldn't read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as toml, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c Config) Validate() error {
	if c.Network == "" {
		return errors.New("config: network is required")
	}
	if c.Contract == "" {
		return errors.New("config: contract is required")
	}
	if c.ReadConcurrency <= 0 {
		return fmt.Errorf("config: read_concurrency must be positive, got %d", c.ReadConcurrency)
	}
	switch c.Log {
	case LogProduction, LogDevelopment, LogOff:
	default:
		return fmt.Errorf("config: unknown log mode %q", c.Log)
	}
	return nil
}

// ApplyFlags lets the command line flags win over the file.
func (c *Config) ApplyFlags() {
	if Network != "" {
		c.Network = Network
	}
	if Contract != "" {
		c.Contract = Contract
	}
	if Keystore != "" {
		c.Keystore = Keystore
	}
	if WalletURL != "" {
		c.WalletURL = WalletURL
	}
	if LogMode != "" {
		c.Log = LogMode
	}
}

func NewLogger(mode string) (*zap.Logger, error) {
	switch mode {
	case LogProduction:
		return zap.NewProduction()
	case LogDevelopment:
		return zap.NewDevelopment()
	case LogOff, "":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
}
