package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benaskins/seedvault/internal/vault"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage account seeds",
}

var seedAddCmd = &cobra.Command{
	Use:   "add <account> [seed]",
	Short: "Store a seed under an account name",
	Long:  "Store a seed. If the seed is omitted, reads it from the terminal or stdin. Refuses duplicate names or seeds unless --force is given.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		account := args[0]

		seed, err := readSecret(args, 1, "Enter seed: ")
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

		ctx := cmd.Context()
		if !force {
			existing, err := v.AllSeeds(ctx, key)
			switch {
			case errors.Is(err, vault.ErrNotFound):
			case err != nil:
				return err
			default:
				dupName := vault.HasDuplicateAccountName(existing, account)
				dupSeed := vault.HasDuplicateSeed(existing, seed)
				existing.Wipe()
				if dupName {
					return fmt.Errorf("account %q already exists (use --force to replace)", account)
				}
				if dupSeed {
					return fmt.Errorf("this seed is already stored under another account")
				}
			}
		}

		if err := v.StoreSeed(ctx, key, seed, account); err != nil {
			return err
		}
		fmt.Printf("Seed for %q stored\n", account)
		return nil
	},
}

var seedGetCmd = &cobra.Command{
	Use:   "get <account>",
	Short: "Print the seed stored under an account",
	Args:  cobra.ExactArgs(1),
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

		seed, err := v.Seed(cmd.Context(), key, args[0])
		if err != nil {
			return err
		}
		fmt.Println(seed)
		return nil
	},
}

var seedListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List account names",
	Aliases: []string{"ls"},
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

		seeds, err := v.AllSeeds(cmd.Context(), key)
		if errors.Is(err, vault.ErrNotFound) {
			fmt.Println("No accounts stored")
			return nil
		}
		if err != nil {
			return err
		}
		names := seeds.Names()
		seeds.Wipe()

		if len(names) == 0 {
			fmt.Println("No accounts stored")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACCOUNT")
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		w.Flush()
		return nil
	},
}

var seedRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
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

		if err := v.RenameAccount(cmd.Context(), key, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Account %q renamed to %q\n", args[0], args[1])
		return nil
	},
}

var seedDeleteCmd = &cobra.Command{
	Use:     "delete <account>",
	Short:   "Remove an account and its seed",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
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

		if err := v.DeleteAccount(cmd.Context(), key, args[0]); err != nil {
			return err
		}
		fmt.Printf("Account %q deleted\n", args[0])
		return nil
	},
}

func init() {
	seedAddCmd.Flags().Bool("force", false, "replace an existing account or store a duplicate seed")
	seedCmd.AddCommand(seedAddCmd)
	seedCmd.AddCommand(seedGetCmd)
	seedCmd.AddCommand(seedListCmd)
	seedCmd.AddCommand(seedRenameCmd)
	seedCmd.AddCommand(seedDeleteCmd)
	rootCmd.AddCommand(seedCmd)
}
