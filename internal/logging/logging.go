// Package logging builds the structured logger the commands share.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pjscruggs/slogcp"
)

// New returns a slogcp logger writing JSON lines to w at the named level
// ("debug", "info", "warn" or "error"). close flushes and releases the
// handler.
func New(w io.Writer, level string) (logger *slog.Logger, close func() error, err error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}
	handler, err := slogcp.NewHandler(w, slogcp.WithLevel(lvl))
	if err != nil {
		return nil, nil, fmt.Errorf("create slogcp handler: %w", err)
	}
	return slog.New(handler), handler.Close, nil
}
