package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read by LoadFile when no env files are named.
const DefaultEnvFile = ".env"

// Load reads configuration from defaults and environment variables.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return load("", nil, false)
}

// LoadFile reads configuration from defaults, then the YAML file at path
// (skipped when path is empty), then the environment. Variables from
// envFiles override the process environment. With no envFiles, a .env
// file in the working directory is used if present.
func LoadFile(path string, envFiles ...string) (*Config, error) {
	optional := len(envFiles) == 0
	if optional {
		envFiles = []string{DefaultEnvFile}
	}
	return load(path, envFiles, optional)
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func load(path string, envFiles []string, optionalEnv bool) (*Config, error) {
	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()

	if err := applyDefaults(v); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		if err := decodeYAML(path, cfg); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	dotenv, err := readEnvFiles(envFiles, optionalEnv)
	if err != nil {
		return nil, fmt.Errorf("config env file: %w", err)
	}
	lookup := func(key string) string {
		if v, ok := dotenv[key]; ok {
			return v
		}
		return os.Getenv(key)
	}

	if err := applyEnv(v, lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func decodeYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func readEnvFiles(files []string, optional bool) (map[string]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	env, err := godotenv.Read(files...)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return env, nil
}

// applyDefaults populates fields from their default tags.
func applyDefaults(v reflect.Value) error {
	return walk(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		def := field.Tag.Get("default")
		if def == "" {
			return nil
		}
		if err := setField(fieldVal, def); err != nil {
			return fmt.Errorf("invalid default for %s: %w", field.Name, err)
		}
		return nil
	})
}

// applyEnv overrides fields from environment variables named by their env
// and envAlt tags.
func applyEnv(v reflect.Value, lookup func(string) string) error {
	return walk(v, func(field reflect.StructField, fieldVal reflect.Value) error {
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			return nil
		}

		// Try primary env var, then alternate
		value := lookup(envName)
		if value == "" && envAlt != "" {
			value = lookup(envAlt)
		}

		if value == "" {
			if required && fieldVal.IsZero() {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			return nil
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
		return nil
	})
}

// walk visits every settable leaf field, recursing into nested structs.
func walk(v reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := walk(fieldVal, fn); err != nil {
				return err
			}
			continue
		}

		if err := fn(field, fieldVal); err != nil {
			return err
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
