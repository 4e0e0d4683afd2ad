package workspace

import (
	"time"

	"github.com/dmitrymomot/anilink/svc/linking"
)

// Config is what every Workspace is built from.
type Config struct {
	PocketBaseURL string
	Collection    string
	AvatarThumb   string
	Location      *time.Location
	Linking       linking.Config
}
