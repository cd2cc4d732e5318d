package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsight-dev/finsight/internal/config"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finsight project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir)
		},
	}
}

const envExample = `# ERP (accounting platform) OAuth2 credentials
FINSIGHT_ERP_CLIENT_ID=
FINSIGHT_ERP_CLIENT_SECRET=
FINSIGHT_ERP_REFRESH_TOKEN=

# Bank API credentials (client-credentials grant)
FINSIGHT_BANK_CLIENT_ID=
FINSIGHT_BANK_CLIENT_SECRET=
# Optional: current-account number and mTLS certificate pair
FINSIGHT_BANK_ACCOUNT=
FINSIGHT_BANK_CERT_FILE=
FINSIGHT_BANK_KEY_FILE=
`

func runInit(dir string) error {
	for _, d := range []string{"logs", "fixtures"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, "finsight.yaml"), config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(envExample), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}

	gitignore := ".env\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Initialized finsight project at %s\n", dir)
	return nil
}
