package cfg

import (
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"time"
	"github.com/BurntSushi/toml"
)

const _DEFAULT_DB_DIR = "data"
const _DEFAULT_NODE_KEY_FILE = "nodekey.json"

type Config struct {
	BaseConfig

	P2p *P2pConfig
}

type BaseConfig struct {
	RootDir string

	Moniker string

	NodeKeyFile string

	DbDir string

	LogLevel string
}

type P2pConfig struct {
	ListenAddr string
	ExternalAddr string

	// one of "", "none", "any", "upnp", "pmp", "extip:<ip>"
	Nat string

	HandshakeTimeout time.Duration
	DialTimeout time.Duration

	AddrBookStrict bool

	MaxNumPeers int
	MinNumOutgoing int

	AllowDuplicateIp bool

	Seeds []string
	PersistentPeers []string
	PrivatePeerIds []string

	SeedMode bool
}

func DefaultP2pConfig() *P2pConfig {
	config := &P2pConfig{
		ListenAddr:       "tcp://0.0.0.0:26656",
		ExternalAddr:     "",
		Nat:              "",
		AddrBookStrict:   true,
		MaxNumPeers:      50,
		MinNumOutgoing:   10,
		AllowDuplicateIp: true,
		HandshakeTimeout: 20 * time.Second,
		DialTimeout:      3 * time.Second,
		SeedMode:         false,
	}
	return config
}

func DefaultConfig() *Config {
	config := &Config{}
	config.Moniker = defaultMoniker()
	config.NodeKeyFile = _DEFAULT_NODE_KEY_FILE
	config.DbDir = _DEFAULT_DB_DIR
	config.LogLevel = "info"
	config.P2p = DefaultP2pConfig()
	return config
}

func defaultMoniker() string {
	moniker, err := os.Hostname()
	if err != nil {
		moniker = "anonymous"
	}
	return moniker
}

// NodeKeyPath returns the node key file rooted at RootDir unless it
// is already absolute.
func (c *BaseConfig) NodeKeyPath() string {
	return rootify(c.RootDir, c.NodeKeyFile)
}

// DbPath returns the database directory rooted at RootDir unless it
// is already absolute.
func (c *BaseConfig) DbPath() string {
	return rootify(c.RootDir, c.DbDir)
}

func rootify(root string, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func adjustPath(dir string, path *string) bool {
	if len(*path) == 0 {
		return false
	}

	if filepath.IsAbs(*path) {
		return false
	}

	*path = filepath.Join(dir, *path)
	return true
}

func LoadConfig(pathname string) (*Config, error) {
	bz, err := ioutil.ReadFile(pathname)
	if err != nil {
		return nil, err
	}

	config := Config{}
	_, err = toml.Decode(string(bz), &config)
	if err != nil {
		return nil, err
	}
	if config.P2p == nil {
		config.P2p = DefaultP2pConfig()
	}

	configDir := path.Dir(pathname)
	if configDir != "." {
		adjustPath(configDir, &config.RootDir)
		adjustPath(configDir, &config.NodeKeyFile)
		adjustPath(configDir, &config.DbDir)
	}
	return &config, nil
}

// ResetTestRoot makes a throwaway root directory and returns a
// default config rooted there.
func ResetTestRoot(name string) *Config {
	rootDir, err := ioutil.TempDir("", name)
	if err != nil {
		panic(err)
	}

	config := DefaultConfig()
	config.RootDir = rootDir
	config.P2p.ListenAddr = "tcp://127.0.0.1:0"
	config.P2p.AddrBookStrict = false
	return config
}
