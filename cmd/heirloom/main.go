package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"heirloom-go/internal/app"
	"heirloom-go/internal/config"
	"heirloom-go/internal/encryption"
	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Create", "Owned").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseID(s string) (uint64, error) {
	var id uint64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid inheritance id: %q", s)
	}
	return id, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

func printRecords(records []model.Inheritance) {
	if len(records) == 0 {
		fmt.Println("No inheritances found.")
		return
	}
	for _, rec := range records {
		status := "active"
		if !rec.IsActive {
			status = "revoked"
		}
		if rec.IsClaimed {
			status += ", claimed"
		}
		fmt.Printf("#%d  %-24s  %8d  %s  [%s]  %s -> %s\n",
			rec.ID,
			rec.FileName,
			rec.FileSize,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			status,
			rec.Owner.Hex(),
			rec.Successor.Hex(),
		)
		if rec.Tag != "" {
			fmt.Printf("    tag: %s\n", rec.Tag)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "heirloom",
	Short: "Register encrypted assets for on-chain inheritance",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Fill in chain.rpc_url, chain.contract_address and store credentials before use.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Chain:     %d via %s\n", cfg.Chain.ChainID, cfg.Chain.RPCURL)
		fmt.Printf("Contract:  %s\n", cfg.Chain.ContractAddress)
		fmt.Printf("Store:     %s\n", cfg.Store.Type)
		fmt.Printf("Cache:     %s\n", cfg.Cache.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("key pair already exists")
		}

		passphrase, err := readPassphrase("New key passphrase: ")
		if err != nil {
			return err
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		recipient, err := enc.Recipient()
		if err != nil {
			return err
		}
		fmt.Println("Key pair generated.")
		fmt.Printf("Share this recipient key with owners naming you as successor:\n%s\n", recipient)
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Register a file for inheritance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		successorFlag, _ := cmd.Flags().GetString("successor")
		tag, _ := cmd.Flags().GetString("tag")
		recipientFile, _ := cmd.Flags().GetString("recipient")

		successor, err := parseAddress(successorFlag)
		if err != nil {
			return err
		}

		recipientKey, err := os.ReadFile(recipientFile)
		if err != nil {
			return fmt.Errorf("reading recipient key: %w", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening asset: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("inspecting asset: %w", err)
		}

		a, err := newApp(cmd, "Create")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Service().CreateInheritance(cmd.Context(), successor, heirloom.Asset{
			Name:    filepath.Base(args[0]),
			Size:    info.Size(),
			Content: f,
		}, string(recipientKey), tag)
		if err != nil {
			return err
		}

		fmt.Printf("Inheritance #%d created for %s\n", rec.ID, rec.Successor.Hex())
		fmt.Printf("Content: %s\n", a.Store().ResolveURL(rec.ContentHash))
		return nil
	},
}

// owned command
var ownedCmd = &cobra.Command{
	Use:   "owned",
	Short: "List inheritances you created",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		a, err := newApp(cmd, "Owned")
		if err != nil {
			return err
		}
		defer a.Close()

		var records []model.Inheritance
		if strict {
			records, err = a.Service().ListOwnedStrict(cmd.Context(), a.Wallet())
		} else {
			records, err = a.Service().ListOwned(cmd.Context(), a.Wallet())
		}
		if err != nil {
			return err
		}

		printRecords(records)
		return nil
	},
}

// inherited command
var inheritedCmd = &cobra.Command{
	Use:   "inherited",
	Short: "List inheritances designating you as successor",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		a, err := newApp(cmd, "Inherited")
		if err != nil {
			return err
		}
		defer a.Close()

		var records []model.Inheritance
		if strict {
			records, err = a.Service().ListInheritedStrict(cmd.Context(), a.Wallet())
		} else {
			records, err = a.Service().ListInherited(cmd.Context(), a.Wallet())
		}
		if err != nil {
			return err
		}

		printRecords(records)
		return nil
	},
}

// claim command
var claimCmd = &cobra.Command{
	Use:   "claim ID",
	Short: "Claim an inheritance designated to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Claim")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Claim(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Inheritance #%d claimed\n", id)
		return nil
	},
}

// revoke command
var revokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke an inheritance you created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Revoke")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Revoke(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Inheritance #%d revoked\n", id)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an inheritance you created",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteRecord(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Inheritance #%d deleted\n", id)
		return nil
	},
}

// reassign command
var reassignCmd = &cobra.Command{
	Use:   "reassign ID NEW_SUCCESSOR",
	Short: "Designate a different successor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		successor, err := parseAddress(args[1])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Reassign")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().ReassignSuccessor(cmd.Context(), id, successor); err != nil {
			return err
		}

		fmt.Printf("Inheritance #%d reassigned to %s\n", id, successor.Hex())
		return nil
	},
}

// fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch ID",
	Short: "Download and decrypt an inheritance payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Fetch")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Key passphrase: ")
		if err != nil {
			return err
		}

		dec, err := a.Encryptor().Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking key: %w", err)
		}

		plaintext, rec, err := a.Service().FetchAsset(cmd.Context(), id, dec)
		if err != nil {
			return err
		}

		if output == "" {
			output = rec.FileName
		}
		if err := os.WriteFile(output, plaintext, 0600); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		fmt.Printf("Wrote %d bytes to %s\n", len(plaintext), output)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringP("successor", "s", "", "Successor wallet address (0x...)")
	createCmd.Flags().StringP("tag", "t", "", "Classification tag (e.g. will, contract)")
	createCmd.Flags().StringP("recipient", "r", "", "File holding the successor's recipient key")
	createCmd.MarkFlagRequired("successor")
	createCmd.MarkFlagRequired("recipient")
	rootCmd.AddCommand(ownedCmd)
	ownedCmd.Flags().Bool("strict", false, "Fail instead of returning a partial listing")
	rootCmd.AddCommand(inheritedCmd)
	inheritedCmd.Flags().Bool("strict", false, "Fail instead of returning a partial listing")
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reassignCmd)
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "", "Output file (defaults to the recorded file name)")
}
