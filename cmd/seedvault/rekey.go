package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Re-encrypt every record under a new key",
	Long:  "Re-encrypt every stored record under a new key. The current key comes from SEEDVAULT_KEY, the new one from SEEDVAULT_NEW_KEY; either is prompted for when unset.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oldKey, err := readKey(keyEnv, "Enter current vault key: ")
		if err != nil {
			return err
		}
		defer oldKey.Zero()
		newKey, err := readKey(newKeyEnv, "Enter new vault key: ")
		if err != nil {
			return err
		}
		defer newKey.Zero()

		v, closeVault, err := openVault(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		if err := v.Rekey(cmd.Context(), oldKey, newKey); err != nil {
			return err
		}
		fmt.Println("Vault re-encrypted")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every account and the two-factor key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("reset destroys all stored seeds; re-run with --yes to confirm")
		}

		v, closeVault, err := openVault(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		if err := v.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Vault cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm deletion of all records")
	rootCmd.AddCommand(rekeyCmd)
	rootCmd.AddCommand(resetCmd)
}
