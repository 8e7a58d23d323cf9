package loader

import (
	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/types"
)

// Logger applies LOG_LEVEL. gin's own debug route listing is silenced unless level is debug.
func Logger(env types.IEnvironment) {
	level := env.GetLogLevel()
	electives.SetLogLevel(level)

	if level != electives.LogLevelDebug {
		gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}
	}
}
