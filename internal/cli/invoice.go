package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fatoora-app/fatoora/internal/domain"
)

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceNextCmd)

	invoiceListCmd.Flags().Bool("final", false, "List only exported invoices")
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Inspect stored invoices",
}

// ─── invoice list ───────────────────────────────────────────────────────────

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored invoices",
	RunE:  runInvoiceList,
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	d, err := loadDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	finalOnly, _ := cmd.Flags().GetBool("final")
	var list []domain.Invoice
	if finalOnly {
		list = d.Store().FinalInvoices()
	} else {
		list = d.Store().Invoices()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tCLIENT\tDATE\tTOTAL\tSTATUS")
	for _, inv := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
			inv.InvoiceNo, inv.Client, inv.Date, inv.GrandTotal, inv.Status)
	}
	return w.Flush()
}

// ─── invoice show ───────────────────────────────────────────────────────────

var invoiceShowCmd = &cobra.Command{
	Use:   "show INVOICE_NO",
	Short: "Show one invoice by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	d, err := loadDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	for _, inv := range d.Store().Invoices() {
		if inv.InvoiceNo != args[0] {
			continue
		}
		fmt.Printf("Invoice:    %s (%s)\n", inv.InvoiceNo, inv.Status)
		fmt.Printf("Client:     %s\n", inv.Client)
		fmt.Printf("Date:       %s  Due: %s\n", inv.Date, inv.DueDate)
		for _, item := range inv.Items {
			fmt.Printf("  %d. %-30s %10.2f + %8.2f VAT = %10.2f\n",
				item.Sequence, item.Service, item.Amount, item.VAT, item.Total)
		}
		fmt.Printf("Subtotal:   %.2f\n", inv.Subtotal)
		fmt.Printf("VAT Total:  %.2f\n", inv.VATTotal)
		fmt.Printf("Total:      %.2f %s\n", inv.GrandTotal, inv.Currency)
		fmt.Printf("In words:   %s\n", inv.AmountInWords)
		return nil
	}
	return fmt.Errorf("invoice %q not found", args[0])
}

// ─── invoice next ───────────────────────────────────────────────────────────

var invoiceNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next invoice number for the current month",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()
		fmt.Println(d.Controller().Allocator().Format())
		return nil
	},
}
