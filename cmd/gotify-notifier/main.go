package main

import (
	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/bridge"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/notifier"
)

func main() {
	bridge.Run("gotify", false, func(f *config.File, log zerolog.Logger) (notifier.Notifier, error) {
		cfg, err := config.ResolveGotify(f, log)
		if err != nil {
			return nil, err
		}
		return notifier.NewGotify(cfg, log)
	})
}
