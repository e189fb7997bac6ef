package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/settings"
)

var (
	// errUnknownSetting is returned for a setting name other than highlight or preview.
	errUnknownSetting = errors.New("unknown setting (use highlight or preview)")

	// errInvalidSwitch is returned for a value other than on/off/true/false.
	errInvalidSwitch = errors.New("invalid value (use on or off)")
)

// settingNames maps command line names to store keys.
var settingNames = map[string]string{
	"highlight": config.KeyHighlightEnabled,
	"preview":   config.KeyPreviewEnabled,
}

// NewSettingsCmd creates the settings command.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings [highlight|preview] [on|off]",
		Short: "Show or change the persisted feature settings",
		Long: `Settings shows or changes the two persisted switches:

  highlight  colour links by category and mark broken ones
  preview    show a preview of the link target on hover

Both are off until turned on. Pages that are already open are not affected;
the check and preview commands turn their feature on for the page they open.

Examples:
  # Show both settings
  linklens settings

  # Turn previews on
  linklens settings preview on`,
		Args: cobra.MaximumNArgs(2),
		RunE: runSettingsCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the settings database")

	return cmd
}

func runSettingsCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := settings.Open(dbDir, settings.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	return runSettings(cmd.Context(), cmd, db, args)
}

func runSettings(ctx context.Context, cmd *cobra.Command, store settings.Store, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, name := range []string{"highlight", "preview"} {
			value, err := store.GetBool(ctx, settingNames[name])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-10s %s\n", name+":", onOff(value))
		}
		return nil
	}

	name := strings.ToLower(args[0])
	key, ok := settingNames[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownSetting, args[0])
	}

	if len(args) == 2 {
		value, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		if err := store.SetBool(ctx, key, value); err != nil {
			return err
		}
	}

	value, err := store.GetBool(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-10s %s\n", name+":", onOff(value))
	return nil
}

// parseSwitch accepts on/off in addition to the strconv boolean forms.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s", errInvalidSwitch, s)
	}
	return v, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
