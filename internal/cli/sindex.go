package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/store"
)

var sindexV1Path string

var sindexCmd = &cobra.Command{
	Use:   "sindex",
	Short: "migrate a legacy v1 schema index into the current v2 schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if sindexV1Path == "" {
			return fmt.Errorf("sindex: --v1-path is required")
		}

		ctx := context.Background()
		dst, err := store.Open(ctx, c.Store.SqlitePath, c.Store.PrevoutCache)
		if err != nil {
			return fmt.Errorf("open v2 store: %w", err)
		}
		defer dst.Close()

		log.WithFields(map[string]any{"v1_path": sindexV1Path, "v2_path": c.Store.SqlitePath}).Info("migrating v1 index to v2")
		if err := store.MigrateV1ToV2(ctx, sindexV1Path, dst); err != nil {
			return fmt.Errorf("migrate v1 to v2: %w", err)
		}
		log.Info("migration complete")
		return nil
	},
}

func init() {
	sindexCmd.Flags().StringVar(&sindexV1Path, "v1-path", "", "path to the legacy v1 schema SQLite file")
}

// SindexCmd is the sindex subcommand, exported for tests/composition.
var SindexCmd = sindexCmd

// RegisterSindex wires sindex into root.
func RegisterSindex(root *cobra.Command) { root.AddCommand(SindexCmd) }
