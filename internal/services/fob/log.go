package fob

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) { log = logger }
