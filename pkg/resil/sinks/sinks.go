// Package sinks assembles the standard sink set for a logger Config.
package sinks

import (
	"github.com/pagewatch/resil/pkg/resil"
	"github.com/pagewatch/resil/pkg/resil/sinks/console"
	"github.com/pagewatch/resil/pkg/resil/sinks/file"
	"github.com/pagewatch/resil/pkg/resil/sinks/multi"
	"github.com/pagewatch/resil/pkg/resil/sinks/noop"
)

// ForConfig builds the sink the Config asks for: console and/or file,
// fanned out when both are enabled, a discard sink when neither is.
func ForConfig(cfg resil.Config) resil.Sink {
	var out []resil.Sink

	if cfg.Console {
		var opts []console.Option
		if cfg.Colorize {
			opts = append(opts, console.WithColor())
		}
		if cfg.IncludeStackTrace {
			opts = append(opts, console.WithStackTraces())
		}
		out = append(out, console.New(opts...))
	}
	if cfg.File {
		out = append(out, file.New(cfg.FilePath))
	}

	switch len(out) {
	case 0:
		return noop.New()
	case 1:
		return out[0]
	}
	return multi.New(out...)
}
