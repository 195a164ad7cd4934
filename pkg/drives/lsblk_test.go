package drives

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const newLsblk = `{
   "blockdevices": [
      {"name":"nvme0n1", "label":null, "mountpoint":null, "type":"disk", "rm":false, "hotplug":false},
      {"name":"nvme0n1p2", "label":"root", "mountpoint":"/", "type":"part", "rm":false, "hotplug":false},
      {"name":"sda1", "label":"CIRCUITPY", "mountpoint":"MOUNT_A", "type":"part", "rm":true, "hotplug":true},
      {"name":"sdb1", "label":null, "mountpoint":"MOUNT_B", "type":"part", "rm":false, "hotplug":true},
      {"name":"sdc1", "label":"UNMOUNTED", "mountpoint":null, "type":"part", "rm":true, "hotplug":true}
   ]
}`

const oldLsblk = `{
   "blockdevices": [
      {"name": "sda", "label": null, "mountpoint": null, "type": "disk", "rm": "1", "hotplug": "1"},
      {"name": "sda1", "label": "PICO", "mountpoint": "/media/pico", "type": "part", "rm": "1", "hotplug": "1"},
      {"name": "sdb1", "label": "data", "mountpoint": "/data", "type": "part", "rm": "0", "hotplug": "0"}
   ]
}`

func TestParseBlockDevices(t *testing.T) {
	devs, err := parseBlockDevices([]byte(oldLsblk))
	require.NoError(t, err)
	require.Len(t, devs, 3)

	assert.True(t, devs[1].removable())
	assert.Equal(t, "/media/pico", devs[1].MountPoint)
	assert.False(t, devs[2].removable())

	devs, err = parseBlockDevices([]byte(newLsblk))
	require.NoError(t, err)
	require.Len(t, devs, 5)
	assert.False(t, devs[1].removable())
	assert.True(t, devs[3].removable(), "hotplug counts as removable")
	assert.Empty(t, devs[4].MountPoint)
}

func TestParseBlockDevicesInvalid(t *testing.T) {
	_, err := parseBlockDevices([]byte(`{"blockdevices": [{"rm": "maybe"}]}`))
	assert.Error(t, err)
}

func TestToDriveDefaultsLabel(t *testing.T) {
	d := blockDevice{Name: "sdb1", MountPoint: "/media/x"}.ToDrive()
	assert.Equal(t, picoclip.Drive{Label: NoLabel, Path: "/media/x", Valid: true}, d)
}

func fakeLsblk(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(out, []byte(output), 0644))

	script := filepath.Join(dir, "lsblk")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat '"+out+"'\n"), 0755))
	return script
}

func TestLocatorList(t *testing.T) {
	mountA := t.TempDir()
	mountB := t.TempDir()
	output := replaceAll(newLsblk, map[string]string{"MOUNT_A": mountA, "MOUNT_B": mountB})

	l := NewLocator(zap.NewNop().Sugar())
	l.Path = fakeLsblk(t, output)

	drives := l.List()
	assert.Equal(t, []picoclip.Drive{
		{Label: "CIRCUITPY", Path: mountA, Valid: true},
		{Label: NoLabel, Path: mountB, Valid: true},
	}, drives)
}

func TestLocatorSkipsDrivesThatAreNotReady(t *testing.T) {
	output := replaceAll(newLsblk, map[string]string{"MOUNT_A": "/a", "MOUNT_B": "/b"})

	l := NewLocator(zap.NewNop().Sugar())
	l.Path = fakeLsblk(t, output)
	l.ready = func(mountPoint string) error {
		if mountPoint == "/a" {
			return errors.New("not ready")
		}
		return nil
	}

	drives := l.List()
	require.Len(t, drives, 1)
	assert.Equal(t, "/b", drives[0].Path)
}

func TestLocatorEnumerationFailure(t *testing.T) {
	l := NewLocator(zap.NewNop().Sugar())
	l.Path = filepath.Join(t.TempDir(), "no-such-lsblk")
	assert.Empty(t, l.List())

	l.Path = fakeLsblk(t, "not json")
	assert.Empty(t, l.List())
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(nil))
	none := picoclip.NoDrive()
	assert.False(t, IsValid(&none))
	assert.False(t, IsValid(&picoclip.Drive{Label: "x", Valid: true}))
	assert.False(t, IsValid(&picoclip.Drive{Label: "x", Path: "/x"}))
	assert.True(t, IsValid(&picoclip.Drive{Label: "x", Path: "/x", Valid: true}))
}

func TestFromPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "CIRCUITPY")
	require.NoError(t, os.Mkdir(dir, 0755))

	d := FromPath(dir)
	assert.Equal(t, picoclip.Drive{Label: "CIRCUITPY", Path: dir, Valid: true}, d)

	assert.False(t, FromPath(filepath.Join(dir, "missing")).Valid)
	assert.False(t, FromPath("").Valid)

	file := filepath.Join(dir, "code.py")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.False(t, FromPath(file).Valid)
}

func TestFind(t *testing.T) {
	list := []picoclip.Drive{{Label: "a", Path: "/a", Valid: true}, {Label: "b", Path: "/b", Valid: true}}

	d, ok := Find(list, "/b")
	assert.True(t, ok)
	assert.Equal(t, "b", d.Label)

	_, ok = Find(list, "/c")
	assert.False(t, ok)
}

func replaceAll(s string, repl map[string]string) string {
	for from, to := range repl {
		s = strings.ReplaceAll(s, from, to)
	}
	return s
}
