package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStatusCmd creates and returns a new status command
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which session state a new process resumes into",
		Long: `Status reports the state a fresh process starts in, based solely on the
persisted cookie file. No network call is made: "loggedin" means a cookie
file was restored, "login" means authentication is required.

Example:
  nestsync status
  nestsync status -j`,
		RunE: runStatus,
	}
}

// runStatus handles the status command execution
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	mgr, err := newManager(cfg)
	if err != nil {
		return err
	}

	res := mgr.Init()
	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Println("Session state: " + res.ActiveTab)
	return nil
}
