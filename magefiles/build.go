//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the collada-export binary with the version stamped in.
func (Build) Cli() error {
	version, err := executeCmd("git", withArgs("describe", "--tags", "--always", "--dirty"))
	if err != nil {
		version = "dev"
	}
	ldflags := fmt.Sprintf("-X main.version=%s", strings.TrimSpace(version))
	if _, err := executeCmd("go", withArgs("build", "-ldflags", ldflags, "-o", "bin/collada-export", "./cmd/collada-export"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the full test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet across the module.
func (Build) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
