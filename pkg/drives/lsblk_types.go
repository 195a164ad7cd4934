package drives

import (
	"bytes"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"encoding/json"
	"fmt"
)

// flag decodes lsblk's boolean columns, which older util-linux releases
// print as "1"/"0" strings.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"1"`, `"true"`, "1":
		*f = true
	case "false", `"0"`, `"false"`, "0", "null", `""`:
		*f = false
	default:
		return fmt.Errorf("unexpected flag value %s", data)
	}
	return nil
}

type blockDevice struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	MountPoint string `json:"mountpoint"`
	Type       string `json:"type"`
	Removable  flag   `json:"rm"`
	Hotplug    flag   `json:"hotplug"`
}

type blockDevices struct {
	BlockDevices []blockDevice `json:"blockdevices"`
}

func parseBlockDevices(data []byte) ([]blockDevice, error) {
	var devs blockDevices
	if err := json.Unmarshal(data, &devs); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return devs.BlockDevices, nil
}

func (d blockDevice) removable() bool {
	return bool(d.Removable) || bool(d.Hotplug)
}

func (d blockDevice) ToDrive() picoclip.Drive {
	label := d.Label
	if label == "" {
		label = NoLabel
	}
	return picoclip.Drive{
		Label: label,
		Path:  d.MountPoint,
		Valid: true,
	}
}
