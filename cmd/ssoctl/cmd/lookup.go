package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emontalvo610/sso-oauth/internal/urlcode"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <email>",
	Short: "Check whether an account exists for an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		if !apiClient.LookupEmail(cmd.Context(), email) {
			cmd.SilenceUsage = true
			return fmt.Errorf("no account for %s", email)
		}
		fmt.Println("account exists")
		if masked, ok := apiClient.MaskedPhoneNumber(cmd.Context(), email); ok {
			fmt.Printf("sms-capable phone on file: %s\n", masked)
		}
		return nil
	},
}

var codecCmd = &cobra.Command{
	Use:   "codec",
	Short: "Encode or decode the base64 email form used in page URLs",
	// Pure string work; overrides the root hook so no API client is needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var encodeCmd = &cobra.Command{
	Use:   "encode <email>",
	Short: "Encode an email for use in a URL path segment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(urlcode.Encode(args[0]))
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <code>",
	Short: "Decode a base64 path segment back to an email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := urlcode.Decode(args[0])
		if text == "" {
			cmd.SilenceUsage = true
			return fmt.Errorf("not a valid encoding of plain text")
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	codecCmd.AddCommand(encodeCmd)
	codecCmd.AddCommand(decodeCmd)
}
