package nbody

import "github.com/go-kit/log"

// logDebug, logWarn and logError mirror the level-tagging convention the
// teacher's mission.go uses around its go-kit/log logger: a "level" keyval
// pair prefixed to whatever context the caller supplies, rather than a
// level-aware logger wrapper.
func logDebug(logger log.Logger, keyvals ...interface{}) {
	_ = logger.Log(append([]interface{}{"level", "debug"}, keyvals...)...)
}

func logWarn(logger log.Logger, keyvals ...interface{}) {
	_ = logger.Log(append([]interface{}{"level", "warn"}, keyvals...)...)
}

func logError(logger log.Logger, keyvals ...interface{}) {
	_ = logger.Log(append([]interface{}{"level", "error"}, keyvals...)...)
}
