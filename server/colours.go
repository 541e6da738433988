package server

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// ANSI colours for the DEV console
const (
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	gray    = "\033[90m"
	reset   = "\033[0m"
)

var methodColours = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PUT":    cyan,
	"DELETE": yellow,
	"PATCH":  magenta,
}

func methodColour(method string) string {
	if c, ok := methodColours[method]; ok {
		return c
	}
	return gray
}

// statusColour shows auth failures in yellow
func statusColour(status int) string {
	switch {
	case status >= 500:
		return red
	case status == 401 || status == 403:
		return yellow
	case status >= 400:
		return magenta
	default:
		return green
	}
}

func logRoute(method, path string) {
	displayMethod := methodColour(method) + fmt.Sprintf(" %-7s", method) + reset
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

func logRequest(method, path string, status int) {
	displayMethod := methodColour(method) + fmt.Sprintf(" %-7s", method) + reset
	displayStatus := statusColour(status) + fmt.Sprintf("%d", status) + reset
	log.Debug().Msgf("[%-19s] %s %s", displayMethod, displayStatus, path)
}
