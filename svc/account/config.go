package account

// Config is the account-related part of the service configuration.
type Config struct {
	Collection  string `env:"POCKETBASE_USERS_COLLECTION" envDefault:"user"`
	AvatarThumb string `env:"AVATAR_THUMB" envDefault:"100x250"`
	Timezone    string `env:"APP_TIMEZONE" envDefault:"UTC"`
}
