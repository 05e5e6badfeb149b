package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"instadm/pkg/auth"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Instagram credentials and verify the session",
	Long: `Store Instagram credentials securely and log in once to verify them.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (backward compatibility)

After storing, a session is established and persisted on disk so that
subsequent commands restore it instead of logging in again. If Instagram
asks you to confirm your identity, you will be prompted for the
verification code sent to you.

Never share your credentials or config files!`,
	Example: `  # Interactive login
  instadm login

  # Login with username
  instadm login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

var skipVerify bool

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "store credentials without logging in")
}

func runLogin(cmd *cobra.Command, args []string) {
	cfg := loadConfig(nil)

	manager, err := auth.NewManager()
	if err != nil {
		fatal("failed to initialize credential manager", err)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if username == "" {
		fmt.Print("Instagram username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fatal("failed to read username", err)
		}
		username = strings.TrimSpace(input)
	}
	if username == "" {
		fatal("username is required", nil)
	}

	// Check if account already exists
	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Password (hidden): ")
	password, err := readPassword()
	if err != nil {
		fatal("failed to read password", err)
	}
	if password == "" {
		fatal("password is required", nil)
	}

	creds := &auth.Credentials{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}

	if err := manager.Save(creds); err != nil {
		fatal("failed to store credentials", err)
	}
	fmt.Printf("Credentials stored for %s\n", username)

	if skipVerify {
		return
	}

	fmt.Println("Logging in to verify credentials...")
	sessions := newSessionManager(cfg, creds)
	sess, err := sessions.Establish(context.Background())
	if err != nil {
		fatal("login failed", err)
	}
	fmt.Printf("Logged in as %s, session saved.\n", sess.Username)
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after password
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
