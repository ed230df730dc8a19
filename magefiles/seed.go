//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Seed builds the binary and loads the corpus file into the SQLite index.
// See prd001-store for the corpus record format.
func Seed() error {
	mg.Deps(Build, Init)

	corpus := filepath.Join("counsel", "corpus", "corpus.yaml")
	if _, err := os.Stat(corpus); err != nil {
		return fmt.Errorf("corpus file %s not found: %w", corpus, err)
	}

	cmd := exec.Command(filepath.Join(binDir, binName), "retrieve", "--json", "tuition")
	cmd.Env = append(os.Environ(), "COUNSEL_ENGINE_STORE_SEED_PATH="+corpus)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("seeding index: %w", err)
	}
	fmt.Println("Index seeded.")
	return nil
}
