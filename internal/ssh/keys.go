package ssh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmssh "github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// KeyEntry represents an authorized public key with metadata
type KeyEntry struct {
	PublicKey   charmssh.PublicKey
	Comment     string
	Fingerprint string
}

// LoadAuthorizedKeys loads SSH public keys from an authorized_keys file.
// Blank lines, comments, and unparseable lines are skipped.
func LoadAuthorizedKeys(path string) ([]charmssh.PublicKey, error) {
	if path == "" {
		return nil, fmt.Errorf("no authorized keys path configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open authorized keys: %w", err)
	}
	defer f.Close()

	var keys []charmssh.PublicKey
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pubKey, _, _, _, err := gossh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue // skip invalid lines
		}
		keys = append(keys, pubKey)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading authorized keys: %w", err)
	}
	return keys, nil
}

// AddAuthorizedKey appends a public key to the authorized_keys file
func AddAuthorizedKey(path string, keyData string) error {
	if path == "" {
		return fmt.Errorf("no authorized keys path configured")
	}

	if _, _, _, _, err := gossh.ParseAuthorizedKey([]byte(strings.TrimSpace(keyData))); err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open authorized keys: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.TrimSpace(keyData) + "\n"); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}
	return nil
}

// ListAuthorizedKeys returns all authorized keys with fingerprints
func ListAuthorizedKeys(path string) ([]KeyEntry, error) {
	if path == "" {
		return nil, fmt.Errorf("no authorized keys path configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open authorized keys: %w", err)
	}
	defer f.Close()

	var entries []KeyEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pubKey, comment, _, _, err := gossh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue
		}

		entries = append(entries, KeyEntry{
			PublicKey:   pubKey,
			Comment:     comment,
			Fingerprint: gossh.FingerprintSHA256(pubKey),
		})
	}

	return entries, scanner.Err()
}
