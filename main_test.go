package main

import (
	"bytes"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"codeberg.org/miketth/picoclip/pkg/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	a := &app{}
	root := newRootCmd(a)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), multierr.Append(err, a.teardown())
}

func TestSaveAndShow(t *testing.T) {
	drive := t.TempDir()

	_, stderr, err := execute(t, "", "--drive", drive, "--state", "memory", "save", "1", "--text", "hello")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Saved slot 1")

	data, err := os.ReadFile(slots.FilePath(drive, "1"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	stdout, _, err := execute(t, "", "--drive", drive, "--state", "memory", "show", "1")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout)
}

func TestSaveFromStdin(t *testing.T) {
	drive := t.TempDir()

	_, _, err := execute(t, "line one\nline two\n", "--drive", drive, "--state", "memory", "save", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(slots.FilePath(drive, "2"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestSaveAsksAboutUntypableText(t *testing.T) {
	drive := t.TempDir()

	_, stderr, err := execute(t, "n\n", "--drive", drive, "--state", "memory", "save", "1", "--text", "a_b")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[y/N]")
	assert.NoFileExists(t, slots.FilePath(drive, "1"))

	_, _, err = execute(t, "y\n", "--drive", drive, "--state", "memory", "save", "1", "--text", "a_b")
	require.NoError(t, err)
	assert.FileExists(t, slots.FilePath(drive, "1"))
}

func TestUnknownSlotFails(t *testing.T) {
	drive := t.TempDir()

	_, stderr, err := execute(t, "", "--drive", drive, "--state", "memory", "save", "9", "--text", "x")
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Contains(t, stderr, "error: Unknown slot")
}

func TestClear(t *testing.T) {
	drive := t.TempDir()
	require.NoError(t, os.WriteFile(slots.FilePath(drive, "3"), []byte("old"), 0644))

	_, _, err := execute(t, "", "--drive", drive, "--state", "memory", "--yes", "clear")
	require.NoError(t, err)

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		data, err := os.ReadFile(slots.FilePath(drive, id))
		require.NoError(t, err)
		assert.Empty(t, data)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	drive := t.TempDir()

	_, _, err := execute(t, "", "--drive", drive, "--state", "memory", "config", "set", "typing_delay", "0.25")
	require.NoError(t, err)
	_, _, err = execute(t, "", "--drive", drive, "--state", "memory", "config", "set", "japanese_keyboard", "false")
	require.NoError(t, err)

	stdout, _, err := execute(t, "", "--drive", drive, "--state", "memory", "config")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"startup_delay = 3",
		"typing_delay = 0.25",
		"add_final_enter = false",
		"enable_modifier_keys = false",
		"japanese_keyboard = false",
	}, "\n")+"\n", stdout)
}

func TestConfigSetRejects(t *testing.T) {
	drive := t.TempDir()

	_, _, err := execute(t, "", "--drive", drive, "--state", "memory", "config", "set", "colour", "blue")
	assert.ErrorContains(t, err, "unknown setting")

	_, _, err = execute(t, "", "--drive", drive, "--state", "memory", "config", "set", "add_final_enter", "maybe")
	assert.ErrorContains(t, err, "expects true or false")

	_, _, err = execute(t, "", "--drive", drive, "--state", "memory", "config", "set", "startup_delay", "soon")
	assert.ErrorIs(t, err, errCommandFailed)
}

func TestCheck(t *testing.T) {
	drive := t.TempDir()
	require.NoError(t, os.WriteFile(slots.FilePath(drive, "2"), []byte("日本語"), 0644))
	require.NoError(t, os.WriteFile(slots.FilePath(drive, "3"), []byte("a|b"), 0644))

	stdout, _, err := execute(t, "", "--drive", drive, "--state", "memory", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "slots 2: non-ASCII")
	assert.Contains(t, stdout, "slots 3: characters a Japanese keyboard cannot type")

	stdout, _, err = execute(t, "", "--state", "memory", "check", "--content", "4=ok", "--content", "1=é")
	require.NoError(t, err)
	assert.Equal(t, "slots 1: non-ASCII characters, skipped by the device\n", stdout)
}

func TestMissingDrive(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, _, err := execute(t, "", "--drive", missing, "--state", "memory", "config")
	assert.ErrorIs(t, err, picoclip.ErrInvalidDrive)
}

func TestUnknownStateBackend(t *testing.T) {
	_, _, err := execute(t, "", "--state", "redis", "drives")
	assert.ErrorContains(t, err, "unknown state backend")
}

func TestReadContentPrefersText(t *testing.T) {
	file := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(file, []byte("from file"), 0644))

	cmd := newSaveCmd(&app{})
	cmd.SetIn(strings.NewReader("from stdin"))

	content, err := readContent(cmd, "", file)
	require.NoError(t, err)
	assert.Equal(t, "from file", content)

	require.NoError(t, cmd.Flags().Set("text", ""))
	content, err = readContent(cmd, "", file)
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestDiffDrives(t *testing.T) {
	a := picoclip.Drive{Label: "A", Path: "/media/a", Valid: true}
	b := picoclip.Drive{Label: "B", Path: "/media/b", Valid: true}
	c := picoclip.Drive{Label: "C", Path: "/media/c", Valid: true}

	added, removed := diffDrives(nil, []picoclip.Drive{a, b})
	assert.Equal(t, []picoclip.Drive{a, b}, added)
	assert.Empty(t, removed)

	added, removed = diffDrives([]picoclip.Drive{a, b}, []picoclip.Drive{b, c})
	assert.Equal(t, []picoclip.Drive{c}, added)
	assert.Equal(t, []picoclip.Drive{a}, removed)

	added, removed = diffDrives([]picoclip.Drive{a}, []picoclip.Drive{a})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestConfirmer(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":     true,
		" YES \n": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"yes":     true,
	} {
		var out bytes.Buffer
		c := newConfirmer(strings.NewReader(input), &out, false)
		assert.Equal(t, want, c.Confirm("Continue?"), "input %q", input)
		assert.Contains(t, out.String(), "Continue? [y/N]")
	}

	var out bytes.Buffer
	assert.True(t, newConfirmer(strings.NewReader(""), &out, true).Confirm("Continue?"))
}

func TestPresenter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := newPresenter(&out, &errOut)

	p.DrivesUpdated(nil)
	p.DrivesUpdated([]picoclip.Drive{{Label: "CIRCUITPY", Path: "/media/CIRCUITPY", Valid: true}})
	p.SlotContentChanged("")
	p.SlotContentChanged("text")
	p.OperationSucceeded("done")
	p.ErrorOccurred("broken")

	assert.Equal(t, "No device found\nCIRCUITPY (/media/CIRCUITPY)\ntext\n", out.String())
	assert.Equal(t, "done\nerror: broken\n", errOut.String())
	assert.Equal(t, 1, p.failed)
}

func TestOpenMemorySelectionStore(t *testing.T) {
	store, closeFn, err := openSelectionStore("memory", zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, store.SetSelection(picoclip.Selection{DrivePath: "/media/a", Slot: "1"}))
	assert.NoError(t, closeFn())
}
