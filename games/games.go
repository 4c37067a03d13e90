// Package games looks up the bundled game implementations by name.
package games

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/kuhn"
	"github.com/timpalpant/go-efr/leduc"
)

var registry = map[string]func() efr.Game{
	"kuhn_poker":  func() efr.Game { return kuhn.NewGame() },
	"leduc_poker": func() efr.Game { return leduc.NewGame() },
}

// Load returns the game with the given name.
func Load(name string) (efr.Game, error) {
	newGame, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown game: %q", name)
	}

	return newGame(), nil
}

// Names lists the available games in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
