package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emontalvo610/sso-oauth/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check link secrets and bearer tokens against the backend",
}

var validateURLCmd = &cobra.Command{
	Use:   "url <secret>",
	Short: "Classify a reset/verification link secret as VALID, EXPIRED, or INVALID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		validity := apiClient.ValidateSecret(cmd.Context(), args[0])
		fmt.Println(validity)
		if validity != domain.ValidityValid {
			// Non-zero exit so scripts can branch on it.
			cmd.SilenceUsage = true
			return fmt.Errorf("secret is %s", validity)
		}
		return nil
	},
}

var validateEmailCmd = &cobra.Command{
	Use:   "email <secret>",
	Short: "Resolve an email-verification secret to its payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := apiClient.ValidateEmailSecret(cmd.Context(), args[0])
		if payload == nil {
			cmd.SilenceUsage = true
			return fmt.Errorf("secret not recognized")
		}
		fmt.Println(string(payload))
		return nil
	},
}

var validateTokenCmd = &cobra.Command{
	Use:   "token <token>",
	Short: "Check whether a bearer token is still accepted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !apiClient.ValidateToken(cmd.Context(), domain.SealedToken(args[0])) {
			cmd.SilenceUsage = true
			return fmt.Errorf("token rejected")
		}
		fmt.Println("token accepted")
		return nil
	},
}

func init() {
	validateCmd.AddCommand(validateURLCmd)
	validateCmd.AddCommand(validateEmailCmd)
	validateCmd.AddCommand(validateTokenCmd)
}
