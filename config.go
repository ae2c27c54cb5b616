package ztrace

import (
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

// ProcessConfig holds the well-known process-wide settings named in
// spec.md §6: system_id, ipv4, reporter, plus the default ttl used when
// Start/Join options omit it.
type ProcessConfig struct {
	SystemID string
	IPv4     net.IP
	Reporter Reporter
	TTL      time.Duration
}

var processConfig atomic.Pointer[ProcessConfig]

func init() {
	processConfig.Store(defaultProcessConfig())
}

func defaultProcessConfig() *ProcessConfig {
	return &ProcessConfig{
		SystemID: hostnameOrFallback(),
		IPv4:     firstNonLoopbackIPv4(),
		Reporter: NoopReporter{},
		TTL:      30 * time.Second,
	}
}

// LoadConfig reads system_id, ipv4, and ttl_ms (milliseconds) from a
// ztrace.yaml file and ZTRACE_* environment variables via spf13/viper, the way the
// pack's platform repo (StLeoX-SeeFlow) loads settings, falling back to
// auto-discovery for any field left unset. The reporter field is never
// read from config — it is a Go value installed by the host process, not a
// serializable setting.
func LoadConfig() (*ProcessConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ZTRACE")
	v.AutomaticEnv()
	v.SetConfigName("ztrace")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	cfg := defaultProcessConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	if sid := v.GetString("system_id"); sid != "" {
		cfg.SystemID = sid
	}
	if ipv4 := v.GetString("ipv4"); ipv4 != "" {
		if ip := net.ParseIP(ipv4); ip != nil {
			cfg.IPv4 = ip.To4()
		}
	}
	if ttlMs := v.GetInt("ttl_ms"); ttlMs > 0 {
		cfg.TTL = time.Duration(ttlMs) * time.Millisecond
	}

	return cfg, nil
}

// Configure installs cfg as the process default consulted by Start/Join
// when their options omit the corresponding field.
func Configure(cfg *ProcessConfig) {
	processConfig.Store(cfg)
}

func currentConfig() *ProcessConfig {
	return processConfig.Load()
}

func hostnameOrFallback() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "unknown-service"
}

// firstNonLoopbackIPv4 auto-discovers the host's IPv4 address the way
// spec.md §6 describes: the first non-loopback IPv4 interface.
func firstNonLoopbackIPv4() net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4
		}
	}
	return nil
}
