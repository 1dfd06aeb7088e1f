package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nestsync/nestsync/internal/authflow"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the childcare service",
		Long: `Login establishes an authenticated session and persists it to the cookie
file so later runs (including sync) resume without re-authenticating.

Credentials are taken from flags, then from the environment (NESTSYNC_EMAIL,
NESTSYNC_PASSWORD, loaded from a .env file when present), then from the
config file's email field. When the account requires a one-time code, the
command prompts for it unless --code is given.

Example:
  nestsync login --email parent@example.com
  nestsync login   # uses NESTSYNC_EMAIL / NESTSYNC_PASSWORD`,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("passwd", "", "Account password")
	cmd.Flags().String("code", "", "One-time code for accounts that require a second factor")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	// A .env file is optional; when present it feeds the environment.
	_ = godotenv.Load()

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = os.Getenv("NESTSYNC_EMAIL")
	}
	if email == "" {
		email = cfg.Email
	}
	passwd, _ := cmd.Flags().GetString("passwd")
	if passwd == "" {
		passwd = os.Getenv("NESTSYNC_PASSWORD")
	}
	if email == "" || passwd == "" {
		return fmt.Errorf("no credentials provided. Use --email/--passwd or set NESTSYNC_EMAIL and NESTSYNC_PASSWORD")
	}

	mgr, err := newManager(cfg)
	if err != nil {
		return err
	}

	if mgr.Init().ActiveTab == authflow.TabLoggedIn {
		if jsonOutput {
			printJSON(map[string]string{
				"status":     "success",
				"message":    "Session resumed from cookie file",
				"active_tab": authflow.TabLoggedIn,
			})
		} else {
			okLabel.Println("✓ Session resumed from cookie file")
		}
		return nil
	}

	res := mgr.Login(cmd.Context(), email, passwd)
	if res.ActiveTab == authflow.TabMFA {
		code, _ := cmd.Flags().GetString("code")
		if code == "" {
			code = promptCode(cmd)
		}
		if code == "" {
			return fmt.Errorf("account requires a one-time code; rerun with --code")
		}
		res = mgr.LoginSecondFactor(cmd.Context(), email, passwd, code)
	}
	if res.Message != "" {
		return fmt.Errorf("login failed: %s", res.Message)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"status":     "success",
			"message":    "Login successful",
			"active_tab": res.ActiveTab,
		})
	} else {
		okLabel.Println("✓ Login successful")
	}
	return nil
}

// promptCode reads the one-time code from the command's input stream.
func promptCode(cmd *cobra.Command) string {
	fmt.Fprint(cmd.ErrOrStderr(), "One-time code: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
