package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/btcsuite/btclog"

	"lifestuff/internal/client"
	"lifestuff/internal/drive"
	"lifestuff/internal/network"
	"lifestuff/internal/relay"
	"lifestuff/internal/services/fob"
	"lifestuff/internal/services/identity"
	"lifestuff/internal/services/message"
	"lifestuff/internal/services/share"
	"lifestuff/internal/store"
	"lifestuff/internal/vault"
)

// subsystems maps each subsystem tag to the function installing its logger.
// When adding a package that logs, add its tag here.
var subsystems = map[string]func(btclog.Logger){
	"CLNT": client.UseLogger,
	"DRIV": drive.UseLogger,
	"FOB":  fob.UseLogger,
	"IDNT": identity.UseLogger,
	"MSG":  message.UseLogger,
	"NETW": network.UseLogger,
	"RLAY": relay.UseLogger,
	"SHAR": share.UseLogger,
	"STOR": store.UseLogger,
	"VALT": vault.UseLogger,
}

// Subsystems returns the supported subsystem tags, sorted.
func Subsystems() []string {
	tags := make([]string, 0, len(subsystems))
	for tag := range subsystems {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SetupLogging routes every subsystem to a backend writing to w at level.
// It returns the logger for tag, which callers may use for their own output.
func SetupLogging(w io.Writer, level, tag string) (btclog.Logger, error) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	backend := btclog.NewBackend(w)
	for sub, use := range subsystems {
		logger := backend.Logger(sub)
		logger.SetLevel(lvl)
		use(logger)
	}
	logger := backend.Logger(tag)
	logger.SetLevel(lvl)
	return logger, nil
}
