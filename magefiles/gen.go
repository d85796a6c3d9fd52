//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Gen mg.Namespace

// Regenerates the procedural weapon textures into assets/textures.
func (Gen) Textures() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/texgen", "-out", "assets/textures"), withStream())
	return err
}

// Batch-exports every container under models/ into assets/meshes.
func (Gen) Meshes() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/export", "-o", "assets/meshes", "models"), withStream())
	return err
}
