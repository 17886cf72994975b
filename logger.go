package shaderblend

import (
	"log/slog"

	"github.com/gogpu/shaderblend/blend"
)

// SetLogger configures the logger for shaderblend and its lowering
// pass. By default no log output is produced. Pass nil to restore the
// silent default.
//
// Log levels:
//   - [slog.LevelDebug]: each lowered color write and each pipeline run
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	blend.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return blend.Logger()
}
