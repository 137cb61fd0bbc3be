package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/ai"
	"github.com/nhle/lenah/internal/credential"
	"github.com/nhle/lenah/internal/model"
)

// buildGenerator picks the configured generator. Without an API key it
// falls back to the offline template and returns a notice for the user.
func buildGenerator(c *model.AppConfig, store *credential.Store, l *log.Logger) (ai.Generator, string) {
	signOff := c.Display.SenderName

	if c.AI.Provider == model.ProviderOffline {
		return ai.NewOffline(signOff), ""
	}

	key, source, err := store.APIKey(c.AI.Provider)
	if err != nil {
		l.Warn("could not read keyring", "provider", c.AI.Provider, "err", err)
	}
	if key == "" {
		l.Warn("no api key, drafting offline", "provider", c.AI.Provider)
		return ai.NewOffline(signOff), fmt.Sprintf(
			"No %s API key found. Set `%s` or run `lenah key set %s`. "+
				"Until then drafts use the standard template.",
			c.AI.Provider, credential.EnvName(c.AI.Provider), c.AI.Provider)
	}

	l.Info("api key loaded", "provider", c.AI.Provider, "source", source)
	switch c.AI.Provider {
	case model.ProviderAnthropic:
		return ai.NewAnthropic(key, c.AI, signOff, l), ""
	default:
		return ai.NewOpenAI(key, c.AI, signOff, l), ""
	}
}
