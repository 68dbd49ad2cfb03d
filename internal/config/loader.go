package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Load reads the configuration from the process environment, applies
// defaults and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with a custom variable lookup.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct fills tagged fields of v, recursing into nested structs.
func loadStruct(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, getenv); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := getenv(envName)
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = getenv(alt)
		}
		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField parses value into field according to its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks every section and reports all failures at once.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		errs = append(errs, "SERVER_*_TIMEOUT values must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxBody <= 0 {
		errs = append(errs, "SERVER_MAX_BODY must be positive")
	}

	for _, p := range c.Security.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is neither a CIDR nor an IP", p))
		}
	}

	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}

	if c.HasS3() && c.S3.Region == "" {
		errs = append(errs, "S3_REGION must be set when S3_BUCKET is")
	}
	if c.S3.Endpoint != "" {
		if u, err := url.Parse(c.S3.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("S3_ENDPOINT (%q) must be an absolute URL", c.S3.Endpoint))
		}
	}

	if c.IDs.TargetLen <= 0 {
		errs = append(errs, fmt.Sprintf("ID_TARGET_LEN (%d) must be positive", c.IDs.TargetLen))
	}
	if _, err := regexp.Compile(c.IDs.Pattern); err != nil {
		errs = append(errs, fmt.Sprintf("ID_PATTERN (%q) is not a valid regular expression: %v", c.IDs.Pattern, err))
	}
	if _, err := regexp.Compile(c.IDs.StripPattern); err != nil {
		errs = append(errs, fmt.Sprintf("ID_STRIP_PATTERN (%q) is not a valid regular expression: %v", c.IDs.StripPattern, err))
	}

	if c.Inventory.Root == "" {
		errs = append(errs, "INVENTORY_ROOT must not be empty")
	}
	if cols := c.Inventory.Columns; len(cols) != 2 || cols[0] == cols[1] {
		errs = append(errs, fmt.Sprintf("INVENTORY_COLUMNS (%v) must name two distinct columns", cols))
	}
	for _, ext := range c.Inventory.ExtraExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("INVENTORY_EXTRA_EXTENSIONS entry %q must start with a dot", ext))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String renders the configuration for logging with the database URL masked.
func (c *Config) String() string {
	db := "disabled"
	if c.HasDatabase() {
		db = "[MASKED]"
	}
	return fmt.Sprintf("Config{Server: {Addr: %q, MaxBody: %d}, Database: {URL: %s, MaxConns: %d}, "+
		"SQLite: {Path: %q}, S3: {Bucket: %q, Prefix: %q}, IDs: {TargetLen: %d, Pattern: %q, StripPattern: %q}, "+
		"Inventory: {Root: %q, Columns: %v}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(), c.Server.MaxBody, db, c.Database.MaxConns,
		c.SQLite.Path, c.S3.Bucket, c.S3.Prefix, c.IDs.TargetLen, c.IDs.Pattern, c.IDs.StripPattern,
		c.Inventory.Root, c.Inventory.Columns, c.Logging.Level, c.Logging.Format)
}
