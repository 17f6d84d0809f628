package app

import (
	"time"

	"github.com/spf13/viper"
)

type MockConfig struct {
	Name       string          `mapstructure:"name" yaml:"name"`
	Log        LogConfig       `mapstructure:"log" yaml:"log"`
	HTTP       HTTPConfig      `mapstructure:"http" yaml:"http"`
	Balance    uint64          `mapstructure:"balance" yaml:"balance"`         // 热更新
	EventDelay time.Duration   `mapstructure:"event_delay" yaml:"event_delay"` // 热更新
	Broker     BrokerConfig    `mapstructure:"broker" yaml:"broker"`
	RateLimit  RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// BrokerConfig nats_url 为空时用进程内 broker
type BrokerConfig struct {
	NatsURL string `mapstructure:"nats_url" yaml:"nats_url"`
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
}

// RateLimitConfig rps<=0 不限流
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" yaml:"rps"`
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

func Default() MockConfig {
	return MockConfig{
		Name:       "mock-oracle",
		Log:        LogConfig{Level: "info"},
		HTTP:       HTTPConfig{Addr: ":8080"},
		Balance:    1000,
		EventDelay: 200 * time.Millisecond,
		Broker:     BrokerConfig{Prefix: "mockoracle"},
		RateLimit:  RateLimitConfig{RPS: 50, Burst: 100},
	}
}

func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("name", d.Name)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("balance", d.Balance)
	v.SetDefault("event_delay", d.EventDelay)
	v.SetDefault("broker.nats_url", d.Broker.NatsURL)
	v.SetDefault("broker.prefix", d.Broker.Prefix)
	v.SetDefault("ratelimit.rps", d.RateLimit.RPS)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
}
