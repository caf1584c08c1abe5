package render

import (
	"log/slog"

	"github.com/gogpu/gg"
)

// SetLogger routes rasterizer diagnostics to l. A nil logger silences them.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}
