/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logger configures leveled logging for scorta.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a logger honoring the `log` option: false or "none" disables
// output, true or "info" logs build lifecycle messages, and "verbose" adds
// debug detail. Unrecognized values fall back to "info".
func New(level string) zerolog.Logger {
	return NewWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr})
}

// NewWithWriter is New with an explicit output writer, for tests.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	switch level {
	case "none", "false":
		return zerolog.New(io.Discard)
	case "verbose":
		return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	default:
		return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
}
