package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/auth"
	"github.com/solatis/formkeeper/internal/core/config"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Issue and revoke API keys",
}

var (
	clientName string
	keySecret  string
)

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a key; the key is printed once and only its HMAC is stored",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, closeDB, err := openKeyAuthenticator(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		secretID := keySecret
		if secretID == "" {
			secrets, _ := config.HMACSecrets()
			if len(secrets) != 1 {
				return fmt.Errorf("--secret-id required when %d secrets are configured", len(secrets))
			}
			for id := range secrets {
				secretID = id
			}
		}

		id := uuid.Must(uuid.NewV7()).String()
		key, err := a.Issue(cmd.Context(), secretID, id, clientName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "api_key_id: %s\nclient:     %s\nkey:        %s\n", id, clientName, key)
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke API_KEY_ID",
	Short: "Revoke a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeDB, err := openKeyAuthenticator(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := a.Revoke(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("revoke %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
		return nil
	},
}

func openKeyAuthenticator(cmd *cobra.Command) (*auth.Authenticator, func(), error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, nil, err
	}
	database, queries, err := openDatabase(cmd.Context(), true)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAuthenticator(secrets, queries), func() { database.Close() }, nil
}

func init() {
	apikeyCreateCmd.Flags().StringVar(&clientName, "name", "", "client name recorded with the key")
	apikeyCreateCmd.Flags().StringVar(&keySecret, "secret-id", "", "secret_id to bind the key to")
	_ = apikeyCreateCmd.MarkFlagRequired("name")
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyRevokeCmd)
	rootCmd.AddCommand(apikeyCmd)
}
