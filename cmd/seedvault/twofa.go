package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var twofaCmd = &cobra.Command{
	Use:   "twofa",
	Short: "Manage the two-factor authentication key",
}

var twofaSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the two-factor key (requires at least one account)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		authKey, err := readSecret(args, 0, "Enter two-factor key: ")
		if err != nil {
			return err
		}
		key, err := readKey(keyEnv, "Enter vault key: ")
		if err != nil {
			return err
		}
		defer key.Zero()

		v, closeVault, err := openVault(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		if err := v.StoreTwoFactorKey(cmd.Context(), key, authKey); err != nil {
			return err
		}
		fmt.Println("Two-factor key stored")
		return nil
	},
}

var twofaGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the two-factor key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readKey(keyEnv, "Enter vault key: ")
		if err != nil {
			return err
		}
		defer key.Zero()

		v, closeVault, err := openVault(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		authKey, err := v.TwoFactorKey(cmd.Context(), key)
		if err != nil {
			return err
		}
		fmt.Println(authKey)
		return nil
	},
}

var twofaDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the two-factor key",
	Aliases: []string{"rm"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, closeVault, err := openVault(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		if err := v.DeleteTwoFactorKey(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Two-factor key deleted")
		return nil
	},
}

func init() {
	twofaCmd.AddCommand(twofaSetCmd)
	twofaCmd.AddCommand(twofaGetCmd)
	twofaCmd.AddCommand(twofaDeleteCmd)
	rootCmd.AddCommand(twofaCmd)
}
