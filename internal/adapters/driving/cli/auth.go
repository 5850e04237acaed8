package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arcadia-labs/daysync/internal/connectors/google"
	"github.com/arcadia-labs/daysync/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored credentials",
}

var authImportCmd = &cobra.Command{
	Use:   "import <token-file>",
	Short: "Import OAuth tokens from a JSON file",
	Long: `Imports tokens obtained from an external OAuth authorisation flow.
The file must contain at least access_token and refresh_token fields as
produced by the provider's token endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthImport,
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke <credential-id>",
	Short: "Mark a credential inactive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if credsStore == nil {
			return errors.New("credentials store not configured")
		}
		if err := credsStore.SetActive(context.Background(), args[0], false); err != nil {
			return err
		}
		cmd.Printf("Credential %s marked inactive.\n", args[0])
		return nil
	},
}

func init() {
	authCmd.AddCommand(authImportCmd)
	authCmd.AddCommand(authRevokeCmd)
	rootCmd.AddCommand(authCmd)
}

// tokenFile mirrors the JSON shape of an OAuth token endpoint response.
type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	AccountEmail string    `json:"account_email"`
}

func runAuthImport(cmd *cobra.Command, args []string) error {
	if credsStore == nil {
		return errors.New("credentials store not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("failed to parse token file: %w", err)
	}
	if tf.AccessToken == "" || tf.RefreshToken == "" {
		return errors.New("token file must contain access_token and refresh_token")
	}

	if tf.AccountEmail == "" {
		// Best effort: resolve the account from the provider.
		if info, err := google.GetUserInfo(cmd.Context(), tf.AccessToken); err == nil {
			tf.AccountEmail = info.Email
		}
	}

	now := time.Now()
	creds := domain.Credentials{
		ID:           uuid.New().String(),
		AccountEmail: tf.AccountEmail,
		AccessToken:  tf.AccessToken,
		RefreshToken: tf.RefreshToken,
		TokenType:    tf.TokenType,
		Expiry:       tf.Expiry,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if creds.TokenType == "" {
		creds.TokenType = "Bearer"
	}

	if err := credsStore.Save(context.Background(), creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	cmd.Printf("Credentials imported: %s\n", creds.ID)
	return nil
}
