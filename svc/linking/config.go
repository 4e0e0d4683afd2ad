package linking

// Config is the public AniList client configuration.
type Config struct {
	ClientID    string `env:"ANILIST_CLIENT_ID"`
	RedirectURI string `env:"ANILIST_REDIRECT_URI"`
}

func (c Config) valid() bool {
	return c.ClientID != "" && c.RedirectURI != ""
}
