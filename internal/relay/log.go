package relay

import "github.com/btcsuite/btclog"

// log is disabled until UseLogger is called.
var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) { log = logger }
