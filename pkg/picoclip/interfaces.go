package picoclip

import (
	"fmt"
	"time"
)

type DriveLister interface {
	List() []Drive
}

type SlotStore interface {
	Get(id string, drive *Drive) (Slot, error)
	Update(id, content string) error
	Save(id string, drive *Drive) error
	Reload(id string, drive *Drive) (Slot, error)
	ClearAll(drive *Drive) error
	IDs() []string
	IsDirty(id string) bool
}

type ConfigStore interface {
	EnsureDefaults(drivePath string) error
	Settings(drivePath string) Settings
	WriteInt(drivePath, key string, value int) error
	WriteFloat(drivePath, key string, value float64) error
	WriteBool(drivePath, key string, value bool) error
}

// Provisioner writes the companion device files onto a drive and reports
// whether anything was written.
type Provisioner interface {
	Provision(drivePath string) (bool, error)
}

type SelectionStore interface {
	LastSelection() (Selection, bool, error)
	SelectedSlot(drivePath string) (string, bool, error)
	SetSelection(sel Selection) error
}

// Presenter receives everything the controller wants to show to the user.
type Presenter interface {
	DrivesUpdated(drives []Drive)
	SlotContentChanged(content string)
	ErrorOccurred(message string)
	OperationSucceeded(message string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

const noDeviceLabel = "No device found"

type Drive struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
}

// NoDrive is the placeholder shown when nothing is attached.
func NoDrive() Drive {
	return Drive{Label: noDeviceLabel}
}

func IsValidDrive(d *Drive) bool {
	return d != nil && d.Valid && d.Path != ""
}

func (d Drive) String() string {
	if d.Path == "" {
		return d.Label
	}
	return fmt.Sprintf("%s (%s)", d.Label, d.Path)
}

type Slot struct {
	ID           string
	Content      string
	Dirty        bool
	LastModified time.Time
}

type Selection struct {
	DrivePath string    `json:"drive_path"`
	Slot      string    `json:"slot"`
	UpdatedAt time.Time `json:"updated_at"`
}
