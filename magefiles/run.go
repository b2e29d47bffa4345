//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Exports the example scenes under testdata to .dae documents.
func (Run) Examples() error {
	if _, err := executeCmd("go", withArgs("run", "./cmd/collada-export", "batch", "--input", "testdata", "--output", "out"), withStream()); err != nil {
		return err
	}
	return nil
}
