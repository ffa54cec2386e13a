package main

import (
	"errors"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"techfest/internal/adapters/storage/jsonfile"
	"techfest/internal/adapters/terminal"
	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/wizard"
)

var registerFlags struct {
	db string
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register for the event in the terminal",
	Long: `Walk the four registration steps interactively and store the result in
the file-backed JSON document used by the fallback API.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerFlags.db, "db", "", "JSON document path (default fallback_db_path)")
}

func runRegister(cmd *cobra.Command, args []string) error {
	store := jsonfile.New(firstNonEmpty(registerFlags.db, cfg.FallbackDBPath))
	if err := store.Seed(eventinfo.Default()); err != nil {
		return err
	}

	info := eventinfo.Default()
	if name, ok := store.EventInfo()["name"].(string); ok && name != "" {
		info.Name = name
	}
	printf(cmd, "%s registration\n", info.Name)

	driver := terminal.NewSurveyDriver(cmd.OutOrStdout())
	w := terminal.New(store, driver, wizard.Identity{UserID: localIdentity()}, cfg.SubmitTimeout)
	stored, err := w.Run(cmd.Context())
	if errors.Is(err, terminal.ErrAborted) {
		printf(cmd, "Registration cancelled.\n")
		return nil
	}
	if err != nil {
		return err
	}
	printf(cmd, "Saved to %s (%s)\n", store.Path(), stored.ID)
	return nil
}

// localIdentity names the terminal user for the stored userId.
func localIdentity() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return "local:" + u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return "local:" + name
	}
	return "local:anonymous"
}
