package system

import "log"

// Debug enables verbose per-tick logging from systems.
var Debug bool

func debugf(format string, args ...any) {
	if Debug {
		log.Printf(format, args...)
	}
}
