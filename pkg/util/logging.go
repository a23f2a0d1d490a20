package util

import (
	"os"
	"strings"
	"sync"

	log "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

var (
	loggersMutex sync.Mutex
	loggers      = map[string]log.Logger{}
)

var logLevels = map[string]int{
	"OFF": log.LevelOff,
	"ERR": log.LevelError,
	"WRN": log.LevelWarn,
	"INF": log.LevelInfo,
	"DBG": log.LevelDebug,
	"TRC": log.LevelTrace,
}

// NewLogger returns the named logxi logger writing to stderr, stdout may carry
// audio. Its initial level comes from LOGXI.
func NewLogger(name string) log.Logger {
	loggersMutex.Lock()
	defer loggersMutex.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := log.NewLogger(log.NewConcurrentWriter(os.Stderr), name)
	loggers[name] = l
	return l
}

// SetLogLevel overrides the level of every logger created by NewLogger.
// level is a logxi level name such as DBG or WRN.
func SetLogLevel(level string) error {
	n, ok := logLevels[strings.ToUpper(level)]
	if !ok {
		return errors.Errorf("unknown log level %q", level)
	}
	loggersMutex.Lock()
	defer loggersMutex.Unlock()
	for _, l := range loggers {
		l.SetLevel(n)
	}
	return nil
}

// ApplyLogxiEnv re-reads the LOGXI variable (name=LVL pairs, * as wildcard)
// for loggers created before it was set, e.g. by a .env file.
func ApplyLogxiEnv() error {
	env := os.Getenv("LOGXI")
	if env == "" {
		return nil
	}
	type rule struct {
		pattern string
		level   int
	}
	rules := []rule{}
	for _, pair := range strings.Split(env, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			return errors.Errorf("malformed LOGXI entry %q", pair)
		}
		n, ok := logLevels[strings.ToUpper(kv[1])]
		if !ok {
			return errors.Errorf("unknown log level %q", kv[1])
		}
		rules = append(rules, rule{kv[0], n})
	}
	loggersMutex.Lock()
	defer loggersMutex.Unlock()
	for name, l := range loggers {
		for _, r := range rules {
			if matchLoggerName(r.pattern, name) {
				l.SetLevel(r.level)
			}
		}
	}
	return nil
}

func matchLoggerName(pattern, name string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}
