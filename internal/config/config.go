package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pool identifies one stratum endpoint in the registry.
type Pool struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// Addr returns the host:port dial string for the pool.
func (p Pool) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Config holds runtime settings for the inspector.
type Config struct {
	Pools              []Pool `yaml:"pools"`
	Worker             string `yaml:"worker"`
	Password           string `yaml:"password"`
	ClientName         string `yaml:"client_name"` // advertised in mining.subscribe
	ConnectTimeoutSecs int    `yaml:"connect_timeout_secs"`
	RecvTimeoutSecs    int    `yaml:"recv_timeout_secs"`
	PollAttempts       int    `yaml:"poll_attempts"`
	Concurrency        int    `yaml:"concurrency"`
	Debug              bool   `yaml:"debug"`
	MetricsListen      string `yaml:"metrics_listen"`
	WatchCron          string `yaml:"watch_cron"` // cron spec for repeated inspections; empty disables watch mode
}

// Default returns the built-in configuration, including the stock pool
// registry, so the tool works with no config file at all.
func Default() Config {
	return Config{
		Pools: []Pool{
			{Name: "harshy", Host: "bch.harshy.site", Port: 3333},
			{Name: "molepool", Host: "eu.molepool.com", Port: 5566},
			{Name: "solopool", Host: "eu2.solopool.org", Port: 8002},
			{Name: "2miners", Host: "solo-bch.2miners.com", Port: 9090},
			{Name: "solohash", Host: "solo.solohash.co.uk", Port: 3337},
			{Name: "solomining", Host: "stratum.solomining.io", Port: 5566},
			{Name: "solo-pool", Host: "bch-eu.solo-pool.org", Port: 3333},
			{Name: "xppool", Host: "in.xppool.in", Port: 5566},
			{Name: "zsolo", Host: "bch.zsolo.bid", Port: 5057},
			{Name: "luckymonster", Host: "bch.luckymonster.pro", Port: 6112},
			{Name: "millpools", Host: "bch.millpools.cc", Port: 6567},
		},
		Worker:             "bitcoincash:qp3wjpa3tjlj042z2wv7hahsldgwhwy0rq9sywjpyy",
		Password:           "x",
		ClientName:         "cgminer/4.9.2",
		ConnectTimeoutSecs: 30,
		RecvTimeoutSecs:    5,
		PollAttempts:       15,
		Concurrency:        4,
	}
}

// Load reads YAML config from disk. Fields left empty in the file fall back
// to the built-in defaults during Validate.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate enforces required fields, applies defaults and sanity checks.
func (c *Config) Validate() error {
	def := Default()
	if len(c.Pools) == 0 {
		c.Pools = def.Pools
	}
	seen := make(map[string]struct{}, len(c.Pools))
	for i, p := range c.Pools {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return fmt.Errorf("pool %d: name is required", i)
		}
		if p.Host == "" {
			return fmt.Errorf("pool %q: host is required", name)
		}
		if p.Port == 0 {
			return fmt.Errorf("pool %q: port is required", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("pool %q: duplicate name", name)
		}
		seen[name] = struct{}{}
		c.Pools[i].Name = name
	}
	if c.Worker == "" {
		c.Worker = def.Worker
	}
	if c.Password == "" {
		c.Password = def.Password
	}
	if c.ClientName == "" {
		c.ClientName = def.ClientName
	}
	if c.ConnectTimeoutSecs < 0 {
		return fmt.Errorf("connect_timeout_secs must be >= 0")
	}
	if c.ConnectTimeoutSecs == 0 {
		c.ConnectTimeoutSecs = def.ConnectTimeoutSecs
	}
	if c.RecvTimeoutSecs < 0 {
		return fmt.Errorf("recv_timeout_secs must be >= 0")
	}
	if c.RecvTimeoutSecs == 0 {
		c.RecvTimeoutSecs = def.RecvTimeoutSecs
	}
	if c.PollAttempts < 0 {
		return fmt.Errorf("poll_attempts must be >= 0")
	}
	if c.PollAttempts == 0 {
		c.PollAttempts = def.PollAttempts
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.WatchCron != "" && c.MetricsListen == "" {
		return fmt.Errorf("metrics_listen is required when watch_cron is set")
	}
	return nil
}

// FindPool looks up a registry entry by name (case-insensitive).
func (c Config) FindPool(name string) (Pool, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range c.Pools {
		if p.Name == name {
			return p, true
		}
	}
	return Pool{}, false
}
