package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

var flagPutName string

var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Upload a downloaded bulletin to the bulletin storage",
	Args:  cobra.ExactArgs(1),
	RunE:  runPut,
}

func init() {
	putCmd.Flags().StringVarP(&flagPutName, "name", "n", "", "Stored name (default the file's base name)")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	name := flagPutName
	if name == "" {
		name = filepath.Base(args[0])
	}

	info, err := app.Storage.Put(cmd.Context(), name, storage.ContentTypeOf(name), f)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), info)
	}
	cmd.Printf("stored %s (%d bytes)\n", info.Name, info.Size)
	return nil
}
