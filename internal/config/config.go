// Package config loads escrowd settings from defaults, an optional TOML file
// under the home directory, ESCROWD_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"onchainpoker/escrow/internal/ocpcrypto"
	"onchainpoker/escrow/internal/randomness"
	"onchainpoker/escrow/internal/types"
)

const (
	EnvPrefix  = "ESCROWD"
	FileName   = "escrowd.toml"
	DefaultDir = ".escrowd"
)

type Config struct {
	Home   string       `mapstructure:"home"`
	ABCI   ABCIConfig   `mapstructure:"abci"`
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Oracle OracleConfig `mapstructure:"oracle"`
	Bank   BankConfig   `mapstructure:"bank"`
	Relay  RelayConfig  `mapstructure:"relay"`
}

type ABCIConfig struct {
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
}

type DBConfig struct {
	Backend string `mapstructure:"backend"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OracleConfig struct {
	// PubKey is the hex ristretto255 public key of the randomness oracle.
	PubKey string `mapstructure:"pubkey"`
}

type BankConfig struct {
	// MintAuthority is a hex principal. Empty runs an open devnet faucet.
	MintAuthority string `mapstructure:"mint_authority"`
}

type RelayConfig struct {
	// NATSURL enables the event relay when set.
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

var defaults = map[string]any{
	"home":                 DefaultDir,
	"abci.addr":            "tcp://127.0.0.1:26658",
	"abci.transport":       "socket",
	"db.backend":           "goleveldb",
	"log.level":            "info",
	"log.format":           "plain",
	"oracle.pubkey":        "",
	"bank.mint_authority":  "",
	"relay.nats_url":       "",
	"relay.subject_prefix": "escrow",
}

// RegisterFlags adds one flag per setting to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("home", DefaultDir, "node home directory")
	fs.String("abci.addr", defaults["abci.addr"].(string), "ABCI listen address")
	fs.String("abci.transport", defaults["abci.transport"].(string), "ABCI transport (socket|grpc)")
	fs.String("db.backend", defaults["db.backend"].(string), "state database backend (goleveldb|memdb|...)")
	fs.String("log.level", defaults["log.level"].(string), "log level (trace|debug|info|warn|error)")
	fs.String("log.format", defaults["log.format"].(string), "log format (plain|json)")
	fs.String("oracle.pubkey", "", "hex public key of the randomness oracle")
	fs.String("bank.mint_authority", "", "hex principal allowed to mint and freeze (empty: open faucet)")
	fs.String("relay.nats_url", "", "NATS server to relay committed events to (empty: disabled)")
	fs.String("relay.subject_prefix", defaults["relay.subject_prefix"].(string), "NATS subject prefix")
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load merges the config file under home (if any) and returns the validated
// configuration. Flags must already be bound to v.
func Load(v *viper.Viper) (Config, error) {
	home := v.GetString("home")
	v.SetConfigFile(filepath.Join(home, "config", FileName))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.ABCI.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("abci.transport must be socket or grpc, got %q", c.ABCI.Transport)
	}
	switch c.Log.Format {
	case "plain", "json":
	default:
		return fmt.Errorf("log.format must be plain or json, got %q", c.Log.Format)
	}
	if c.DB.Backend == "" {
		return fmt.Errorf("db.backend is required")
	}
	if _, err := c.OracleKey(); err != nil {
		return err
	}
	if _, err := c.MintAuthority(); err != nil {
		return err
	}
	return nil
}

func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// OracleKey returns nil when no oracle is configured.
func (c Config) OracleKey() (*ocpcrypto.Point, error) {
	if c.Oracle.PubKey == "" {
		return nil, nil
	}
	pk, err := randomness.ParseOracleKey(c.Oracle.PubKey)
	if err != nil {
		return nil, fmt.Errorf("oracle.pubkey: %w", err)
	}
	return pk, nil
}

func (c Config) MintAuthority() (types.Address, error) {
	if c.Bank.MintAuthority == "" {
		return types.Address{}, nil
	}
	addr, err := types.ParseAddress(c.Bank.MintAuthority)
	if err != nil {
		return types.Address{}, fmt.Errorf("bank.mint_authority: %w", err)
	}
	return addr, nil
}
