package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML file into a Config, with env-var expansion and
// optional hot-reload via fsnotify.
type Loader struct {
	path     string
	dotenv   string
	onChange func(*Config)

	watcher *fsnotify.Watcher
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithOnChange registers a callback invoked with the freshly-parsed
// Config whenever the watched file changes.
func WithOnChange(fn func(*Config)) LoaderOption {
	return func(l *Loader) { l.onChange = fn }
}

// WithDotenv points the loader at a .env file to load before expansion.
func WithDotenv(path string) LoaderOption {
	return func(l *Loader) { l.dotenv = path }
}

// NewLoader constructs a Loader for the YAML file at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the config file once.
func (l *Loader) Load() (*Config, error) {
	if err := loadDotenv(l.dotenv); err != nil {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := expandEnvVars(string(raw))

	var generic map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &generic); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationSecondsHook(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Watch starts watching the config file for changes, invoking
// onChange on every successful reparse. It runs until the returned
// stop function is called.
func (l *Loader) Watch() (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(l.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}
	l.watcher = watcher

	go l.watchLoop()

	return watcher.Close, nil
}

func (l *Loader) watchLoop() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := l.Load()
			if err != nil {
				continue
			}
			if l.onChange != nil {
				l.onChange(cfg)
			}
		case _, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// stringToDurationSecondsHook converts a plain integer/string number of
// seconds into a time.Duration field, matching the YAML shape of
// *_seconds config keys that decode into time.Duration fields.
func stringToDurationSecondsHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := data.(string)
			if s == "" {
				return data, nil
			}
			seconds, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return data, nil
			}
			return time.Duration(seconds) * time.Second, nil
		case reflect.Int, reflect.Int64, reflect.Float64:
			seconds := reflect.ValueOf(data).Convert(reflect.TypeOf(float64(0))).Float()
			return time.Duration(seconds) * time.Second, nil
		default:
			return data, nil
		}
	}
}
