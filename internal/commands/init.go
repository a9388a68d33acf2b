package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/business"
	"github.com/smallbiz-dev/smallbiz/internal/config"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func newInitCommand(_ *rootOptions) *cobra.Command {
	var (
		settings = model.DefaultSettings()
		useGit   bool
	)

	cmd := &cobra.Command{
		Use:   "init [parent-directory]",
		Short: "Create a new business directory",
		Long: `Create <parent-directory>/<business_name> with the standard layout,
settings, the default chart of accounts and an empty rules file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := "."
			if len(args) > 0 {
				parent = args[0]
			}
			absParent, err := filepath.Abs(parent)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dir, err := business.Init(settings, absParent)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Initialized %s at %s", settings.BusinessName, dir)
			if useGit {
				hash, err := business.InitRepo(dir, config.Default(), settings.BusinessName)
				if err != nil {
					return err
				}
				msg += fmt.Sprintf(" (%s)", hash)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.BusinessName, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&settings.BusinessABN, "abn", "", "Australian Business Number")
	cmd.Flags().StringVar(&settings.BusinessEmail, "email", "", "business email")
	cmd.Flags().StringVar(&settings.BusinessPhone, "phone", "", "business phone")
	cmd.Flags().StringVar(&settings.BusinessAddress, "address", "", "business address")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit the new directory")

	return cmd
}
