package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"caregate/internal/config"
	internalssh "caregate/internal/ssh"
)

var sshKeysPath string

var sshKeysCmd = &cobra.Command{
	Use:   "ssh-keys",
	Short: "Manage SSH authorized keys",
	Long:  "Add and list SSH public keys allowed to reach the terminal chat over SSH.",
}

var sshKeysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authorized SSH public keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveAuthorizedKeysPath()
		if err != nil {
			return err
		}

		entries, err := internalssh.ListAuthorizedKeys(path)
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No authorized keys found.")
			fmt.Println("Add one with: caregate ssh-keys add <key-file-or-string>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINGERPRINT\tCOMMENT")
		fmt.Fprintln(w, "-----------\t-------")
		for _, entry := range entries {
			comment := entry.Comment
			if comment == "" {
				comment = "(no comment)"
			}
			fmt.Fprintf(w, "%s\t%s\n", entry.Fingerprint, comment)
		}
		w.Flush()
		return nil
	},
}

var sshKeysAddCmd = &cobra.Command{
	Use:   "add <key-file-or-string>",
	Short: "Add an SSH public key",
	Long: `Add an SSH public key to the authorized keys list.
The argument can be a path to a public key file (e.g., ~/.ssh/id_ed25519.pub)
or the key string itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveAuthorizedKeysPath()
		if err != nil {
			return err
		}

		keyData := args[0]

		// Check if it's a file path
		if _, err := os.Stat(keyData); err == nil {
			data, err := os.ReadFile(keyData)
			if err != nil {
				return fmt.Errorf("failed to read key file: %w", err)
			}
			keyData = strings.TrimSpace(string(data))
		}

		if err := internalssh.AddAuthorizedKey(path, keyData); err != nil {
			return err
		}

		fmt.Println("SSH public key added successfully.")
		return nil
	},
}

// resolveAuthorizedKeysPath prefers the flag, falling back to the
// configured SSH server path.
func resolveAuthorizedKeysPath() (string, error) {
	if sshKeysPath != "" {
		return sshKeysPath, nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", err
	}
	if cfg.SSH.AuthorizedKeysPath == "" {
		return "", fmt.Errorf("no authorized keys path configured (set ssh.authorized_keys_path or pass --authorized-keys)")
	}
	return cfg.SSH.AuthorizedKeysPath, nil
}

func init() {
	sshKeysCmd.PersistentFlags().StringVar(&sshKeysPath, "authorized-keys", "", "Path to authorized_keys file (default: from config)")

	sshKeysCmd.AddCommand(sshKeysListCmd)
	sshKeysCmd.AddCommand(sshKeysAddCmd)
}
