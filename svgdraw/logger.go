package svgdraw

import (
	"log/slog"

	"github.com/benoitkugler/svgtree/internal/logx"
)

// SetLogger sets the logger used by the svgtree packages.
// By default, nothing is logged. Passing nil restores the default.
//
// Element-local problems (invalid values, dangling references,
// unsupported elements) are logged at level Debug; recovered panics
// and invalid fonts at level Warn.
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) { logx.Set(l) }

// Logger returns the current logger.
func Logger() *slog.Logger { return logx.L() }
