//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the OpenGL viewer.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	fmt.Println("Run viewer...")
	_, err := executeCmd(binPath("umbra"), withArgs("-config", "umbra.toml"), withStream())
	return err
}

// Runs the software viewer.
func (Run) Softview() error {
	mg.Deps(Build.Softview)
	fmt.Println("Run softview...")
	_, err := executeCmd(binPath("softview"), withArgs("-config", "umbra.toml"), withStream())
	return err
}

// Renders snapshot.png and shadow.png from the testbed scene.
func (Run) Snapshot() error {
	mg.Deps(Build.Snapshot)
	_, err := executeCmd(binPath("snapshot"), withArgs("-config", "umbra.toml", "-o", "snapshot.png", "-shadow", "shadow.png"), withStream())
	return err
}
