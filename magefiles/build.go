//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const binDir = "bin"

// Builds the OpenGL viewer.
func (Build) Viewer() error {
	return goBuild("umbra", ".")
}

// Builds the software viewer.
func (Build) Softview() error {
	return goBuild("softview", "./cmd/softview")
}

// Builds the headless snapshot tool.
func (Build) Snapshot() error {
	return goBuild("snapshot", "./cmd/snapshot")
}

// Builds every binary.
func (Build) All() {
	mg.SerialDeps(Build.Viewer, Build.Softview, Build.Snapshot)
}

func goBuild(name, pkg string) error {
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join(binDir, name), pkg), withStream())
	return err
}
