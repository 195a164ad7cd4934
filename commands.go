package main

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"codeberg.org/miketth/picoclip/pkg/textcheck"
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

func newDrivesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List attached removable drives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ctrl.RefreshDrives()
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [slot]",
		Short: "Print the content of a slot",
		Long:  "Print the content of a slot. Without a slot the last one used on the drive is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()

			id := "1"
			if len(args) == 1 {
				id = args[0]
			} else if last, ok := a.ctrl.SelectedSlot(&drive); ok {
				id = last
			}

			a.ctrl.SelectSlot(id, &drive, "", "")
			return nil
		},
	}
}

func newSaveCmd(a *app) *cobra.Command {
	var text, file string

	cmd := &cobra.Command{
		Use:   "save <slot>",
		Short: "Write text into a slot",
		Long: `Write text into a slot. The text comes from --text, --file or standard input.
Pass --yes when piping text in, confirmations are read from standard input too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, text, file)
			if err != nil {
				return fmt.Errorf("read content: %w", err)
			}

			drive := a.resolveDrive()
			a.ctrl.SaveSlot(args[0], content, &drive)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to save")
	cmd.Flags().StringVar(&file, "file", "", "file to read the text from")
	cmd.MarkFlagsMutuallyExclusive("text", "file")

	return cmd
}

// readContent takes --text, then --file, then standard input.
func readContent(cmd *cobra.Command, text, file string) (string, error) {
	switch {
	case cmd.Flags().Changed("text"):
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <slot>",
		Short: "Read a slot back from the drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()
			a.ctrl.ReloadSlot(args[0], &drive, a.ctrl.IsSlotModified(args[0]))
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty every slot on the drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()
			a.ctrl.ClearAll(&drive)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the device settings stored on the drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()
			if !picoclip.IsValidDrive(&drive) {
				return picoclip.ErrInvalidDrive
			}

			printSettings(cmd.OutOrStdout(), a.ctrl.Settings(&drive))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one device setting",
		Long: fmt.Sprintf("Change one device setting. Keys: %s.", strings.Join([]string{
			picoclip.KeyStartupDelay,
			picoclip.KeyTypingDelay,
			picoclip.KeyAddFinalEnter,
			picoclip.KeyEnableModifierKeys,
			picoclip.KeyJapaneseKeyboard,
		}, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()
			return a.setConfig(&drive, args[0], args[1])
		},
	})

	return cmd
}

func printSettings(w io.Writer, s picoclip.Settings) {
	fmt.Fprintf(w, "%s = %d\n", picoclip.KeyStartupDelay, s.StartupDelay)
	fmt.Fprintf(w, "%s = %s\n", picoclip.KeyTypingDelay, strconv.FormatFloat(s.TypingDelay, 'g', -1, 64))
	fmt.Fprintf(w, "%s = %t\n", picoclip.KeyAddFinalEnter, s.AddFinalEnter)
	fmt.Fprintf(w, "%s = %t\n", picoclip.KeyEnableModifierKeys, s.EnableModifierKeys)
	fmt.Fprintf(w, "%s = %t\n", picoclip.KeyJapaneseKeyboard, s.JapaneseKeyboard)
}

func (a *app) setConfig(drive *picoclip.Drive, key, value string) error {
	switch key {
	case picoclip.KeyStartupDelay:
		a.ctrl.SaveStartupDelay(drive, value)
		return nil
	case picoclip.KeyTypingDelay:
		a.ctrl.SaveTypingDelay(drive, value)
		return nil
	}

	setters := map[string]func(*picoclip.Drive, bool){
		picoclip.KeyAddFinalEnter:      a.ctrl.SaveAddFinalEnter,
		picoclip.KeyEnableModifierKeys: a.ctrl.SaveModifierKeys,
		picoclip.KeyJapaneseKeyboard:   a.ctrl.SaveJapaneseKeyboard,
	}
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s expects true or false: %w", key, err)
	}

	set(drive, b)
	return nil
}

func newCheckCmd(a *app) *cobra.Command {
	var contents map[string]string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report slots the device cannot type faithfully",
		Long: `Report slots the device cannot type faithfully. Without --content the slots on
the drive are checked; with it the given slot=text pairs are checked instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(contents) > 0 {
				printCheck(out, "non-ASCII characters, skipped by the device", a.ctrl.CheckContents(contents))
				return nil
			}

			drive := a.resolveDrive()
			if !picoclip.IsValidDrive(&drive) {
				return picoclip.ErrInvalidDrive
			}

			printCheck(out, "non-ASCII characters, skipped by the device", a.ctrl.CheckNonASCII(&drive))
			if a.ctrl.Settings(&drive).JapaneseKeyboard {
				printCheck(out,
					fmt.Sprintf("characters a Japanese keyboard cannot type (%s)", textcheck.JISUntypableDescription()),
					a.ctrl.CheckJISUntypable(&drive))
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&contents, "content", nil, "slot=text pair to check instead of the drive")

	return cmd
}

func printCheck(w io.Writer, what string, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintf(w, "no slots with %s\n", what)
		return
	}
	fmt.Fprintf(w, "slots %s: %s\n", strings.Join(ids, ", "), what)
}

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the device program and default settings to the drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drive := a.resolveDrive()
			a.ctrl.InitializeDevice(&drive)
			return nil
		},
	}

	cmd.Flags().StringVar(&a.opts.payload, "payload", "", "directory holding the device files (default $XDG_DATA_HOME/picoclip/payload)")

	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow drives as they come and go",
		Long:  "Follow drives as they come and go, filling in default settings on every drive that appears.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}
			return a.watch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "how often to look for drives")

	return cmd
}
