package main

import (
	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/bridge"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/notifier"
)

func main() {
	bridge.Run("ntfy", false, func(f *config.File, log zerolog.Logger) (notifier.Notifier, error) {
		cfg, err := config.ResolveNtfy(f, log)
		if err != nil {
			return nil, err
		}
		return notifier.NewNtfy(cfg, log)
	})
}
