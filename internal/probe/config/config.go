package config

import (
	"time"

	"github.com/spf13/viper"
)

// 总配置
type ProbeConfig struct {
	Name            string         `mapstructure:"name" yaml:"name"`
	Log             LogConfig      `mapstructure:"log" yaml:"log"`
	Endpoint        EndpointConfig `mapstructure:"endpoint" yaml:"endpoint"`
	Channel         string         `mapstructure:"channel" yaml:"channel"`
	DialTimeout     time.Duration  `mapstructure:"dial_timeout" yaml:"dial_timeout"`         // 0 表示不设
	ReceiveTimeout  time.Duration  `mapstructure:"receive_timeout" yaml:"receive_timeout"`   // listener 单次读等待
	SubscribeSettle time.Duration  `mapstructure:"subscribe_settle" yaml:"subscribe_settle"` // 订阅后等服务端登记
	Intents         []IntentStep   `mapstructure:"intents" yaml:"intents"`
	Metrics         MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// EndpointConfig: 默认由 host 拼出 ws://host/ws 和 http://host/api/ai/oracle，
// ws_url / intent_url 非空时直接覆盖
type EndpointConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	WSURL     string `mapstructure:"ws_url" yaml:"ws_url"`
	IntentURL string `mapstructure:"intent_url" yaml:"intent_url"`
}

// IntentStep 发一次 intent，然后等 Wait 让推送事件到达
type IntentStep struct {
	Text string        `mapstructure:"text" yaml:"text"`
	Wait time.Duration `mapstructure:"wait" yaml:"wait"`
}

type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway" yaml:"pushgateway"`
	Job         string `mapstructure:"job" yaml:"job"`
}

func (e EndpointConfig) WebSocketURL() string {
	if e.WSURL != "" {
		return e.WSURL
	}
	return "ws://" + e.Host + "/ws"
}

func (e EndpointConfig) OracleURL() string {
	if e.IntentURL != "" {
		return e.IntentURL
	}
	return "http://" + e.Host + "/api/ai/oracle"
}

func Default() ProbeConfig {
	return ProbeConfig{
		Name:            "oracle-probe",
		Log:             LogConfig{Level: "info"},
		Endpoint:        EndpointConfig{Host: "localhost:8080"},
		Channel:         "oracle",
		DialTimeout:     5 * time.Second,
		ReceiveTimeout:  10 * time.Second,
		SubscribeSettle: 500 * time.Millisecond,
		Intents: []IntentStep{
			{Text: "check my balance", Wait: 2 * time.Second},
			{Text: "send 50 KARA to bob", Wait: 3 * time.Second},
		},
		Metrics: MetricsConfig{Job: "oracle-probe"},
	}
}

// SetDefaults 把 Default() 注册进 viper，env 才能覆盖这些 key
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("name", d.Name)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("endpoint.host", d.Endpoint.Host)
	v.SetDefault("endpoint.ws_url", d.Endpoint.WSURL)
	v.SetDefault("endpoint.intent_url", d.Endpoint.IntentURL)
	v.SetDefault("channel", d.Channel)
	v.SetDefault("dial_timeout", d.DialTimeout)
	v.SetDefault("receive_timeout", d.ReceiveTimeout)
	v.SetDefault("subscribe_settle", d.SubscribeSettle)

	steps := make([]map[string]interface{}, 0, len(d.Intents))
	for _, s := range d.Intents {
		steps = append(steps, map[string]interface{}{"text": s.Text, "wait": s.Wait})
	}
	v.SetDefault("intents", steps)

	v.SetDefault("metrics.pushgateway", d.Metrics.Pushgateway)
	v.SetDefault("metrics.job", d.Metrics.Job)
}
