//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

var tools = []string{"export", "fbx2obj", "inspect", "objremap", "texgen", "texconv"}

type Build mg.Namespace

// Compiles every command into bin/.
func (Build) Tools() error {
	for _, tool := range tools {
		out := filepath.Join("bin", tool)
		if _, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/"+tool), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Runs the full test suite.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
