package exchange

import "github.com/dmitrymomot/anilink/pkg/anilist"

// Config holds the confidential AniList client credentials.
type Config struct {
	ClientID     string `env:"ANILIST_CLIENT_ID"`
	ClientSecret string `env:"ANILIST_CLIENT_SECRET"`
	TokenURL     string `env:"ANILIST_TOKEN_URL" envDefault:"https://anilist.co/api/v2/oauth/token"`
}

func (c Config) configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c Config) tokenURL() string {
	if c.TokenURL == "" {
		return anilist.TokenURL
	}
	return c.TokenURL
}
