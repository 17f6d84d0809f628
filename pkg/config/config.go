package config

import (
	"errors"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type options struct {
	paths    []string
	defaults func(v *viper.Viper)
	onReload func()
}

type Option func(*options)

// WithPaths 替换默认的搜索目录 (./config, .)
func WithPaths(paths ...string) Option {
	return func(o *options) { o.paths = paths }
}

// WithDefaults 注册默认值。没有默认值的 key 无法被环境变量覆盖（viper AllKeys 只认识已知 key）。
func WithDefaults(fn func(v *viper.Viper)) Option {
	return func(o *options) { o.defaults = fn }
}

// OnReload 热更新成功后回调
func OnReload(fn func()) Option {
	return func(o *options) { o.onReload = fn }
}

// Load 读取 config/{service}.yaml 并 Unmarshal 到 out。
// 文件不存在不算错误：只用默认值 + 环境变量。
func Load(service string, out interface{}, opts ...Option) (*viper.Viper, error) {
	o := options{paths: []string{"./config", "."}}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetConfigName(service)
	v.SetConfigType("yaml")
	for _, p := range o.paths {
		v.AddConfigPath(p)
	}

	// 环境变量覆盖，例如：
	//   ORACLE_PROBE_ENDPOINT_HOST 覆盖 endpoint.host
	//   MOCK_ORACLE_HTTP_ADDR      覆盖 http.addr
	v.SetEnvPrefix(envPrefix(service))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if o.defaults != nil {
		o.defaults(v)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Printf("[%s] no config file, using defaults", service)
	} else {
		log.Printf("[%s] config loaded from %s", service, v.ConfigFileUsed())
	}

	if err := v.Unmarshal(out); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadAndWatch 同 Load，另外监听文件变更，热更新到 out
func LoadAndWatch(service string, out interface{}, opts ...Option) (*viper.Viper, error) {
	v, err := Load(service, out, opts...)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return v, nil
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[%s] config file changed: %s", service, e.Name)

		if err := v.Unmarshal(out); err != nil {
			log.Printf("[%s] reload config error: %v", service, err)
			return
		}
		log.Printf("[%s] config reloaded OK", service)
		if o.onReload != nil {
			o.onReload()
		}
	})
	v.WatchConfig()

	return v, nil
}

func envPrefix(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
}
