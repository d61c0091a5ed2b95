package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fatoora-app/fatoora/internal/app/lifecycle"
	"github.com/fatoora-app/fatoora/internal/domain"
)

func init() {
	rootCmd.AddCommand(companyCmd)
	companyCmd.AddCommand(companyShowCmd)
	companyCmd.AddCommand(companySetCmd)

	companySetCmd.Flags().String("name", "", "Company name")
	companySetCmd.Flags().String("address", "", "Street address")
	companySetCmd.Flags().String("city", "", "City and country")
	companySetCmd.Flags().String("contact", "", "Phone or email")
	companySetCmd.Flags().String("trn", "", "Tax registration number (7-15 digits)")
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage the issuing company profile",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		company, err := d.Store().Persister().LoadCompany()
		if err != nil {
			return err
		}
		if company == nil {
			fmt.Println("No company profile saved. Use 'fatoora company set'.")
			return nil
		}
		fmt.Printf("Name:    %s\n", company.Name)
		fmt.Printf("Address: %s\n", company.Address)
		fmt.Printf("City:    %s\n", company.CityCountry)
		fmt.Printf("Contact: %s\n", company.Contact)
		fmt.Printf("TRN:     %s\n", company.TRN)
		return nil
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		// Start from the saved profile so single-field updates work.
		company := domain.Company{}
		if saved, err := d.Store().Persister().LoadCompany(); err == nil && saved != nil {
			company = *saved
		}
		for flag, dst := range map[string]*string{
			"name":    &company.Name,
			"address": &company.Address,
			"city":    &company.CityCountry,
			"contact": &company.Contact,
			"trn":     &company.TRN,
		} {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
			}
		}

		if strings.TrimSpace(company.Name) == "" {
			return domain.ErrCompanyNameRequired
		}
		if company.TRN != "" {
			if err := lifecycle.ValidateTRN(company.TRN); err != nil {
				return err
			}
		}
		if err := d.Store().Persister().SaveCompany(company); err != nil {
			return err
		}
		fmt.Println("Company profile saved")
		return nil
	},
}
