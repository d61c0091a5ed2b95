package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fatoora-app/fatoora/internal/app/lifecycle"
	"github.com/fatoora-app/fatoora/internal/domain"
)

// ─── One-Shot Authoring ─────────────────────────────────────────────────────
// draft and export build a candidate from flags and commit it in one run,
// for scripted workflows that bypass the editor frontend.

func init() {
	invoiceCmd.AddCommand(invoiceDraftCmd)
	invoiceCmd.AddCommand(invoiceExportCmd)
	invoiceCmd.AddCommand(invoiceEditCmd)

	for _, cmd := range []*cobra.Command{invoiceDraftCmd, invoiceExportCmd, invoiceEditCmd} {
		cmd.Flags().String("client", "", "Client name (required)")
		cmd.Flags().String("date", "", "Invoice date YYYY-MM-DD (default today)")
		cmd.Flags().String("due", "", "Due date YYYY-MM-DD (default +30 days)")
		cmd.Flags().String("number", "", "Manual invoice number (default next for month)")
		cmd.Flags().String("payment", "", "Payment mode")
		cmd.Flags().StringArray("item", nil, `Line item as "Service[:Description]:Amount" (repeatable)`)
	}
}

var invoiceDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Save a draft invoice from flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, false)
	},
}

var invoiceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a final invoice PDF from flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd, true)
	},
}

var invoiceEditCmd = &cobra.Command{
	Use:   "edit INVOICE_NO",
	Short: "Re-export an existing final invoice with changed fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceEdit,
}

func runOneShot(cmd *cobra.Command, final bool) error {
	d, err := loadDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctrl := d.Controller()
	started := ctrl.StartNew()
	in, err := inputFromFlags(cmd, started)
	if err != nil {
		return err
	}
	if number, _ := cmd.Flags().GetString("number"); number != "" {
		ctrl.AdoptManualNumber(number)
		in.InvoiceNo = number
	}
	if _, err := ctrl.SetCandidate(in); err != nil {
		return err
	}

	if final {
		inv, err := ctrl.CommitFinal()
		if err != nil {
			return commitError(err)
		}
		fmt.Printf("Exported %s for %s (%.2f %s)\n", inv.InvoiceNo, inv.Client, inv.GrandTotal, inv.Currency)
		return nil
	}
	inv, err := ctrl.CommitDraft()
	if err != nil {
		return commitError(err)
	}
	fmt.Printf("Draft %s saved (id %s)\n", inv.InvoiceNo, inv.ID)
	return nil
}

func runInvoiceEdit(cmd *cobra.Command, args []string) error {
	d, err := loadDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var target *domain.Invoice
	for _, inv := range d.Store().FinalInvoices() {
		if inv.InvoiceNo == args[0] {
			target = &inv
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no exported invoice %q", args[0])
	}

	ctrl := d.Controller()
	loaded, err := ctrl.LoadForEdit(target.ID)
	if err != nil {
		return err
	}
	in, err := inputFromLoaded(cmd, loaded)
	if err != nil {
		return err
	}
	if _, err := ctrl.SetCandidate(in); err != nil {
		return err
	}
	inv, err := ctrl.CommitFinal()
	if err != nil {
		return commitError(err)
	}
	fmt.Printf("Re-exported %s (%.2f %s)\n", inv.InvoiceNo, inv.GrandTotal, inv.Currency)
	return nil
}

// inputFromFlags builds editor input for a fresh invoice, falling back to
// the started candidate's generated number and default dates.
func inputFromFlags(cmd *cobra.Command, started domain.Invoice) (lifecycle.Input, error) {
	client, _ := cmd.Flags().GetString("client")
	if client == "" {
		return lifecycle.Input{}, errors.New("--client is required")
	}
	items, err := parseItems(cmd)
	if err != nil {
		return lifecycle.Input{}, err
	}
	if len(items) == 0 {
		return lifecycle.Input{}, errors.New("at least one --item is required")
	}

	in := lifecycle.Input{
		InvoiceNo:   started.InvoiceNo,
		Date:        started.Date,
		DueDate:     started.DueDate,
		PaymentMode: started.PaymentMode,
		Company:     started.Company,
		Client:      client,
		Items:       items,
	}
	applyDateFlags(cmd, &in)
	if in.Company.Name == "" {
		return lifecycle.Input{}, errors.New("no company profile saved; run 'fatoora company set' first")
	}
	return in, nil
}

// inputFromLoaded builds editor input for an edit: the loaded invoice's
// fields stand unless a flag overrides them.
func inputFromLoaded(cmd *cobra.Command, loaded domain.Invoice) (lifecycle.Input, error) {
	in := lifecycle.Input{
		InvoiceNo:   loaded.InvoiceNo,
		Date:        loaded.Date,
		DueDate:     loaded.DueDate,
		PaymentMode: loaded.PaymentMode,
		Company:     loaded.Company,
		Client:      loaded.Client,
	}
	if client, _ := cmd.Flags().GetString("client"); client != "" {
		in.Client = client
	}
	applyDateFlags(cmd, &in)

	if cmd.Flags().Changed("item") {
		items, err := parseItems(cmd)
		if err != nil {
			return lifecycle.Input{}, err
		}
		in.Items = items
	} else {
		for _, item := range loaded.Items {
			in.Items = append(in.Items, lifecycle.LineInput{
				Service:     item.Service,
				Description: item.Description,
				Amount:      item.Amount,
			})
		}
	}
	return in, nil
}

func applyDateFlags(cmd *cobra.Command, in *lifecycle.Input) {
	if date, _ := cmd.Flags().GetString("date"); date != "" {
		in.Date = date
	}
	if due, _ := cmd.Flags().GetString("due"); due != "" {
		in.DueDate = due
	}
	if payment, _ := cmd.Flags().GetString("payment"); payment != "" {
		in.PaymentMode = payment
	}
}

// parseItems decodes repeated --item flags: "Service:Amount" or
// "Service:Description:Amount".
func parseItems(cmd *cobra.Command) ([]lifecycle.LineInput, error) {
	raw, _ := cmd.Flags().GetStringArray("item")
	items := make([]lifecycle.LineInput, 0, len(raw))
	for _, spec := range raw {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid --item %q, want Service[:Description]:Amount", spec)
		}
		amount, err := strconv.ParseFloat(parts[len(parts)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in --item %q", spec)
		}
		item := lifecycle.LineInput{Service: strings.TrimSpace(parts[0]), Amount: amount}
		if len(parts) == 3 {
			item.Description = strings.TrimSpace(parts[1])
		}
		items = append(items, item)
	}
	return items, nil
}

// commitError unwraps guard refusals into readable CLI failures.
func commitError(err error) error {
	var dup *lifecycle.DuplicateError
	if errors.As(err, &dup) {
		return fmt.Errorf("blocked (%s): %s", dup.Reason, dup.Message)
	}
	if errors.Is(err, domain.ErrCancelled) {
		return errors.New("export cancelled")
	}
	return err
}
