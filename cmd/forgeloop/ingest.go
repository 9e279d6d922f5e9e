package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/internal/validator"
)

// ingestFile is the on-disk shape of a feature list, per spec.md §6's
// "sequence of insert statements" — expressed here as YAML since that is
// the format the rest of this toolchain reads and writes.
type ingestFile struct {
	Features []ingestFeature `yaml:"features"`
}

type ingestFeature struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Steps       []string `yaml:"steps"`
}

var ingestProjectDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest <features.yaml>",
	Short: "Load a feature list into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(args[0], ingestProjectDir)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestProjectDir, "project", ".", "target project directory")
}

func runIngest(path, projectDir string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var doc ingestFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Features) == 0 {
		return fmt.Errorf("%s declares no features", path)
	}

	rows := make([]store.IngestFeature, len(doc.Features))
	for i, f := range doc.Features {
		rows[i] = store.IngestFeature{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Category:    f.Category,
			Steps:       f.Steps,
		}
	}

	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	if err := db.Ingest(rows); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	all, err := db.AllFeatures()
	if err != nil {
		return fmt.Errorf("load features after ingest: %w", err)
	}
	if err := validator.CheckContiguity(all); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ingested features violate category contiguity: %v\n", err)
	}

	fmt.Printf("ingested %d feature(s) from %s\n", len(rows), path)
	return nil
}
