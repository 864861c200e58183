package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/filekv"
	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/apiclient"
	"github.com/DAVIDafergan/tatpro-intake/internal/cache"
	"github.com/DAVIDafergan/tatpro-intake/internal/config"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
	"github.com/DAVIDafergan/tatpro-intake/internal/wizard"
)

// NewWizardCommand creates the wizard command.
func NewWizardCommand() *cobra.Command {
	var apiURL, dataDir string
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in the intake form interactively",
		Long: `Fill in the intake form interactively.

Submissions are kept in a local file under the data directory. With an API
URL configured they are also sent to the server, and the admin code is
checked by the server instead of locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			kv, err := filekv.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open data dir: %w", err)
			}
			store := cache.New(kv, cache.WithLocale(cfg.Tag()))
			if err := store.Load(); err != nil {
				return err
			}

			var (
				checker ports.AdminChecker = admin.NewSecretChecker(cfg.AdminCode)
				lister  Lister
				opts    []wizard.Option
			)
			if cfg.APIURL != "" {
				client := apiclient.New(cfg.APIURL, nil)
				checker, lister = client, client
				opts = append(opts, wizard.WithPublisher(client))
			}

			s := wizard.NewSession(store, admin.NewGate(checker), opts...)
			return NewREPL(s, cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Tag(), lister).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "intake API base URL (overrides INTAKE_API_URL)")
	cmd.Flags().StringVar(&dataDir, "data", "", "local data directory (overrides INTAKE_DATA_DIR)")
	return cmd
}
