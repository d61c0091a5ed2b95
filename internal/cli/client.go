package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fatoora-app/fatoora/internal/domain"
	"github.com/fatoora-app/fatoora/internal/infra/importer"
)

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientImportCmd)
	clientCmd.AddCommand(clientRenameCmd)
	clientCmd.AddCommand(clientRemoveCmd)

	clientAddCmd.Flags().String("phone", "", "Client phone")
	clientAddCmd.Flags().String("address", "", "Client address")
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage the client list",
}

// ─── client list ────────────────────────────────────────────────────────────

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPHONE\tADDRESS")
		for _, c := range d.Store().Clients() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Phone, c.Address)
		}
		return w.Flush()
	},
}

// ─── client add ─────────────────────────────────────────────────────────────

var clientAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add one client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		phone, _ := cmd.Flags().GetString("phone")
		address, _ := cmd.Flags().GetString("address")
		added, err := d.Store().AddClients([]domain.Client{{
			ID:        uuid.NewString(),
			Name:      args[0],
			Phone:     phone,
			Address:   address,
			CreatedAt: time.Now().Format(time.RFC3339),
		}})
		if err != nil {
			return err
		}
		if added == 0 {
			return fmt.Errorf("client %q already exists", args[0])
		}
		fmt.Printf("Added %s\n", args[0])
		return nil
	},
}

// ─── client import ──────────────────────────────────────────────────────────

var clientImportCmd = &cobra.Command{
	Use:   "import FILE.xlsx",
	Short: "Import clients from a spreadsheet",
	Long: `Import clients from an .xlsx workbook. The first sheet is scanned
for a header row with a client/name/customer column; phone and address
columns are picked up when present. Rows whose name duplicates an existing
client are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := importer.NewExcel().ImportClients(f)
		if err != nil {
			return err
		}
		now := time.Now().Format(time.RFC3339)
		batch := make([]domain.Client, 0, len(rows))
		for _, row := range rows {
			batch = append(batch, domain.Client{
				ID:        uuid.NewString(),
				Name:      row.Name,
				Phone:     row.Phone,
				Address:   row.Address,
				CreatedAt: now,
			})
		}
		added, err := d.Store().AddClients(batch)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d rows, added %d new clients\n", len(rows), added)
		return nil
	},
}

// ─── client rename / remove ─────────────────────────────────────────────────

var clientRenameCmd = &cobra.Command{
	Use:   "rename OLD_NAME NEW_NAME",
	Short: "Rename a client",
	Long: `Rename a client. Historical invoices keep the old name snapshot;
renaming never rewrites exported invoices.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		client, ok := d.Store().ClientByName(args[0])
		if !ok {
			return fmt.Errorf("client %q not found", args[0])
		}
		if err := d.Store().RenameClient(client.ID, args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

var clientRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		client, ok := d.Store().ClientByName(args[0])
		if !ok {
			return fmt.Errorf("client %q not found", args[0])
		}
		if d.Store().HasFinalInvoices(client.Name) {
			fmt.Printf("Note: %s has exported invoices; they keep the name\n", client.Name)
		}
		if _, err := d.Store().DeleteClients(client.ID); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", client.Name)
		return nil
	},
}
