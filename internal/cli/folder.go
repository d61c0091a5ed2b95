package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderShowCmd)
	folderCmd.AddCommand(folderSetCmd)
}

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage the export folder preference",
}

var folderShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved export folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		folder, err := d.Store().Persister().ExportFolder()
		if err != nil {
			return err
		}
		if folder == "" {
			fmt.Println("No export folder saved; the configured default applies")
			return nil
		}
		fmt.Println(folder)
		return nil
	},
}

var folderSetCmd = &cobra.Command{
	Use:   "set PATH",
	Short: "Save the export folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := d.Store().Persister().SetExportFolder(path); err != nil {
			return err
		}
		fmt.Printf("Export folder set to %s\n", path)
		return nil
	},
}
