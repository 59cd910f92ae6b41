package levels

import (
	"embed"
	"fmt"
	"io/fs"
)

// Extension is the file suffix of level files.
const Extension = ".level.kdl"

//go:embed *.level.kdl
var LevelsFS embed.FS

// LoadLevelFromFS reads and parses a level from the embedded levels.
func LoadLevelFromFS(name string) (*Descriptor, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(name, string(data))
}

// Names lists the embedded level files in lexical order.
func Names() []string {
	matches, err := fs.Glob(LevelsFS, "*"+Extension)
	if err != nil {
		return nil
	}
	return matches
}
