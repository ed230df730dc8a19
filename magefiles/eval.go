//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Eval builds the binary and runs the evaluation battery against the hard gates.
// Exits nonzero when any gate fails. See prd007-evaluation for gate thresholds.
func Eval() error {
	mg.Deps(Build, Init)

	report := filepath.Join("reports", "eval.json")
	cmd := exec.Command(filepath.Join(binDir, binName), "eval", "--report", report)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
