package main

import (
	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/bridge"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/notifier"
)

func main() {
	// discord renders subtitles in markdown
	bridge.Run("discord", true, func(f *config.File, log zerolog.Logger) (notifier.Notifier, error) {
		cfg, err := config.ResolveDiscord(f)
		if err != nil {
			return nil, err
		}
		return notifier.NewDiscord(cfg, log)
	})
}
