package logger

import (
	"log/slog"
	"time"
)

// Error returns an "error" attribute. Nil errors produce an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// UserID is the PocketBase record id of the acting user.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// BrowserID identifies the workspace a record belongs to.
func BrowserID(id string) slog.Attr {
	return slog.String("browser_id", id)
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Provider is the OAuth provider name (google, github, anilist).
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
