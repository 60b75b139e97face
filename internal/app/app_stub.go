//go:build !ebiten

package app

import (
	"errors"

	"cellsim/internal/core"
)

// ErrNoWindow is returned by RunWindow in builds without the ebiten tag.
var ErrNoWindow = errors.New("app: the window front end requires building with the 'ebiten' tag")

// RunWindow reports that the GUI build tag is missing.
func RunWindow(core.Controls, int) error {
	return ErrNoWindow
}
