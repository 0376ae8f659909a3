package config

import (
	"strconv"
	"time"

	"github.com/philipparndt/gobcf/internal/logging"
)

// applyEnv overrides settings from GOBCF_* variables. Values that do not parse
// keep the current setting.
func (c *Config) applyEnv(getenv func(string) string) {
	e := env{getenv: getenv}
	c.AngleThreshold = e.getFloat("ANGLE_THRESHOLD_RAD", c.AngleThreshold)
	c.InvertDirection = e.getBool("INVERT_DIRECTION", c.InvertDirection)
	c.HostUnit = e.getString("HOST_UNIT", c.HostUnit)
	c.DefaultFieldOfView = e.getFloat("DEFAULT_FIELD_OF_VIEW", c.DefaultFieldOfView)
	c.HistoryPath = e.getString("HISTORY_PATH", c.HistoryPath)
	c.LogLevel = e.getString("LOG_LEVEL", c.LogLevel)
	c.Bridge.Addr = e.getString("BRIDGE_ADDR", c.Bridge.Addr)
	c.Bridge.ReadTimeout = e.getDuration("BRIDGE_READ_TIMEOUT", c.Bridge.ReadTimeout)
	c.Bridge.WriteTimeout = e.getDuration("BRIDGE_WRITE_TIMEOUT", c.Bridge.WriteTimeout)
	c.Bridge.ExportTimeout = e.getDuration("BRIDGE_EXPORT_TIMEOUT", c.Bridge.ExportTimeout)
	c.Inbox.Dir = e.getString("INBOX_DIR", c.Inbox.Dir)
	c.Inbox.Debounce = e.getDuration("INBOX_DEBOUNCE", c.Inbox.Debounce)
}

type env struct {
	getenv func(string) string
}

func (e env) lookup(key string) (string, bool) {
	value := e.getenv(EnvPrefix + key)
	return value, value != ""
}

func (e env) getString(key, defaultVal string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultVal
}

func (e env) getFloat(key string, defaultVal float64) float64 {
	if value, ok := e.lookup(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		logging.Logger().Warn("ignoring invalid environment value", "key", EnvPrefix+key, "value", value)
	}
	return defaultVal
}

func (e env) getBool(key string, defaultVal bool) bool {
	if value, ok := e.lookup(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		logging.Logger().Warn("ignoring invalid environment value", "key", EnvPrefix+key, "value", value)
	}
	return defaultVal
}

func (e env) getDuration(key string, defaultVal time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logging.Logger().Warn("ignoring invalid environment value", "key", EnvPrefix+key, "value", value)
	}
	return defaultVal
}
