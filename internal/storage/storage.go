package storage

import (
	"context"
	"errors"
	"regexp"
)

var (
	ErrScriptNotFound = errors.New("script not found")
	ErrInvalidName    = errors.New("invalid script name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidName reports whether name can be used as a script name. Names double
// as redis keys and file names, so they are kept to a safe alphabet.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ScriptInfo describes one entry of the script library.
type ScriptInfo struct {
	Name string `json:"name"`
	// Published scripts were saved through the store and shadow seed
	// scripts of the same name.
	Published bool `json:"published"`
}

// Storage is the script library: raw script text by name. Text is stored
// as written; callers parse it.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	ListScripts(ctx context.Context) ([]ScriptInfo, error)
	GetScript(ctx context.Context, name string) (string, error)
	SaveScript(ctx context.Context, name, text string) error

	// DeleteScript removes a published script. Seed scripts cannot be
	// deleted.
	DeleteScript(ctx context.Context, name string) error
}
