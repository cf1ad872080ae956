// Command validate checks narrative content catalogs for authoring
// errors before they ship: unknown predicates and categories, missing
// options, duplicate ids. Fully flag-gated choice sets are reported as
// warnings, since they are legal content the scheduler gates at runtime.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate narrative content catalogs",
		Long:  "Validate drama and interview template catalogs under a data directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			total := 0
			total += validateDrama(cmd, filepath.Join(dataDir, "drama"))
			total += validateInterviews(cmd, filepath.Join(dataDir, "interviews"))
			if total > 0 {
				return fmt.Errorf("%d validation error(s)", total)
			}
			cmd.Println("All catalogs are valid.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", "./data", "content data directory")
	cmd.SilenceUsage = true
	return cmd
}

func validateDrama(cmd *cobra.Command, dir string) int {
	errCount := 0
	ids := make(map[string]string)
	forEachJSON(cmd, dir, func(path string, data []byte) {
		var templates []*drama.Template
		if err := json.Unmarshal(data, &templates); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			errCount++
			return
		}
		for _, t := range templates {
			if prev, dup := ids[t.ID]; dup {
				cmd.PrintErrf("%s: duplicate drama template id %q (also in %s)\n", path, t.ID, prev)
				errCount++
			}
			ids[t.ID] = path
			for _, err := range t.Validate() {
				cmd.PrintErrf("%s: %v\n", path, err)
				errCount++
			}
			for _, w := range t.Warnings() {
				cmd.Printf("%s: warning: %s\n", path, w)
			}
		}
	}, &errCount)
	return errCount
}

func validateInterviews(cmd *cobra.Command, dir string) int {
	errCount := 0
	ids := make(map[string]string)
	forEachJSON(cmd, dir, func(path string, data []byte) {
		var templates []*interview.Template
		if err := json.Unmarshal(data, &templates); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			errCount++
			return
		}
		for _, t := range templates {
			if prev, dup := ids[t.ID]; dup {
				cmd.PrintErrf("%s: duplicate interview template id %q (also in %s)\n", path, t.ID, prev)
				errCount++
			}
			ids[t.ID] = path
			for _, err := range t.Validate() {
				cmd.PrintErrf("%s: %v\n", path, err)
				errCount++
			}
		}
	}, &errCount)
	return errCount
}

func forEachJSON(cmd *cobra.Command, dir string, fn func(path string, data []byte), errCount *int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			cmd.Printf("skipping %s (not found)\n", dir)
			return
		}
		cmd.PrintErrf("%s: %v\n", dir, err)
		*errCount++
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			*errCount++
			continue
		}
		fn(path, data)
	}
}
