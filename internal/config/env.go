package config

import (
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DBGFRONT_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envSetters maps environment variables to config fields.
var envSetters = map[string]func(*Config, string){
	"DBGFRONT_INTERPRETER":    func(c *Config, v string) { c.Interpreter = v },
	"DBGFRONT_LOG_LEVEL":      func(c *Config, v string) { c.Logging.Level = v },
	"DBGFRONT_LOG_FORMAT":     func(c *Config, v string) { c.Logging.Format = v },
	"DBGFRONT_LOG_FILE":       func(c *Config, v string) { c.Logging.File = v },
	"DBGFRONT_SESSION_LOG":    func(c *Config, v string) { c.SessionLog.File = v },
	"DBGFRONT_TARGET_ADDRESS": func(c *Config, v string) { c.Target.Address = v },
	"DBGFRONT_TARGET_ADAPTER": func(c *Config, v string) { c.Target.Adapter = strings.Fields(v) },
	"DBGFRONT_TARGET_PROGRAM": func(c *Config, v string) { c.Target.Program = v },
	"DBGFRONT_LUA_SCRIPT":     func(c *Config, v string) { c.Lua.Script = v },
	"DBGFRONT_REMOTE_LISTEN":  func(c *Config, v string) { c.Remote.Listen = v },
	"DBGFRONT_SESSION_REDIRECT": func(c *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SessionLog.Redirect = b
		}
	},
}

// ApplyEnv applies DBGFRONT_* overrides found through lookup.
func ApplyEnv(c *Config, lookup LookupFunc) {
	for key, set := range envSetters {
		if v, ok := lookup(key); ok {
			set(c, strings.TrimSpace(v))
		}
	}
}
