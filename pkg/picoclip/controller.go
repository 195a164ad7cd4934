package picoclip

import (
	"codeberg.org/miketth/picoclip/pkg/textcheck"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	msgSelectDrive = "Select a valid drive"
	msgReloadAsk   = "Slot %s has unsaved changes. Reloading will overwrite them.\nContinue?"
	msgClearAsk    = "This erases the contents of every slot.\nContinue?"
	msgSaveAsk     = "Save anyway?"
	msgInitAsk     = "The device program will be written to %s.\n" +
		"Existing code.py, config.json and lib folder will be overwritten."
	msgInitNothing = "No device files were written"
	msgContinue    = "Continue?"
)

type Controller struct {
	drives      DriveLister
	slots       SlotStore
	config      ConfigStore
	provisioner Provisioner
	selections  SelectionStore

	ui      Presenter
	confirm Confirmer
	log     *zap.SugaredLogger

	now func() time.Time
}

func NewController(
	drives DriveLister,
	slots SlotStore,
	config ConfigStore,
	provisioner Provisioner,
	selections SelectionStore,
	ui Presenter,
	confirm Confirmer,
	log *zap.SugaredLogger,
) *Controller {
	return &Controller{
		drives:      drives,
		slots:       slots,
		config:      config,
		provisioner: provisioner,
		selections:  selections,
		ui:          ui,
		confirm:     confirm,
		log:         log,
		now:         time.Now,
	}
}

// describe turns a store error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDrive):
		return msgSelectDrive
	case errors.Is(err, ErrInvalidSlot):
		return "Unknown slot"
	case errors.Is(err, ErrSlotLoadFailed):
		return "Could not read from the device"
	case errors.Is(err, ErrSlotSaveFailed):
		return "Could not write to the device"
	case errors.Is(err, ErrConfigIO):
		return "Could not access the device settings"
	case errors.Is(err, ErrProvision):
		return "Could not copy the device files"
	default:
		return "Operation failed"
	}
}

// fail reports err to the user by category only. The wrapped detail goes to
// the debug log.
func (c *Controller) fail(action string, err error) {
	c.log.Debugw("operation failed", "action", action, "error", err)
	c.ui.ErrorOccurred(describe(err))
}

func (c *Controller) checkDrive(drive *Drive) bool {
	if IsValidDrive(drive) {
		return true
	}
	c.ui.ErrorOccurred(msgSelectDrive)
	return false
}

func (c *Controller) RefreshDrives() []Drive {
	drives := c.drives.List()
	c.ui.DrivesUpdated(drives)
	return drives
}

// SelectSlot keeps the content edited in the previous slot and shows the
// content of the newly selected one.
func (c *Controller) SelectSlot(id string, drive *Drive, previousID, previousContent string) {
	if previousID != "" {
		if err := c.slots.Update(previousID, previousContent); err != nil {
			c.fail("update slot", err)
		}
	}

	if !c.checkDrive(drive) {
		c.ui.SlotContentChanged("")
		return
	}

	slot, err := c.slots.Get(id, drive)
	if err != nil {
		c.fail("select slot", err)
		c.ui.SlotContentChanged("")
		return
	}

	c.ui.SlotContentChanged(slot.Content)
	c.recordSelection(drive, id)
}

func (c *Controller) ReloadSlot(id string, drive *Drive, modified bool) {
	if !c.checkDrive(drive) {
		return
	}

	if modified && !c.confirm.Confirm(fmt.Sprintf(msgReloadAsk, id)) {
		return
	}

	slot, err := c.slots.Reload(id, drive)
	if err != nil {
		c.fail("reload slot", err)
		return
	}

	c.ui.SlotContentChanged(slot.Content)
}

func (c *Controller) SaveSlot(id, content string, drive *Drive) {
	if !c.checkDrive(drive) {
		return
	}

	settings := c.config.Settings(drive.Path)
	if warnings := textcheck.Warnings(content, settings.JapaneseKeyboard); len(warnings) > 0 {
		if !c.confirm.Confirm(savePrompt(id, warnings)) {
			return
		}
	}

	if err := c.slots.Update(id, content); err != nil {
		c.fail("update slot", err)
		return
	}
	if err := c.slots.Save(id, drive); err != nil {
		c.fail("save slot", err)
		return
	}

	c.ui.OperationSucceeded(fmt.Sprintf("Saved slot %s", id))
	c.recordSelection(drive, id)
}

func savePrompt(id string, warnings []textcheck.Warning) string {
	var sb strings.Builder
	for _, w := range warnings {
		fmt.Fprintf(&sb, "Slot %s: %s\n\n", id, w.Message)
	}
	sb.WriteString(msgSaveAsk)
	return sb.String()
}

func (c *Controller) ClearAll(drive *Drive) {
	if !c.checkDrive(drive) {
		return
	}

	if !c.confirm.Confirm(msgClearAsk) {
		return
	}

	// the store resets its buffers even when some files could not be reset
	err := c.slots.ClearAll(drive)
	c.ui.SlotContentChanged("")
	if err != nil {
		c.fail("clear slots", err)
		return
	}

	c.ui.OperationSucceeded("Cleared all slots")
}

// UpdateSlotContent changes the buffered content without touching the drive.
func (c *Controller) UpdateSlotContent(id, content string) {
	if err := c.slots.Update(id, content); err != nil {
		c.fail("update slot", err)
	}
}

func (c *Controller) SlotIDs() []string {
	return c.slots.IDs()
}

func (c *Controller) SlotContent(id string, drive *Drive) (string, bool) {
	slot, err := c.slots.Get(id, drive)
	if err != nil {
		c.log.Debugw("could not get slot content", "slot", id, "error", err)
		return "", false
	}
	return slot.Content, true
}

func (c *Controller) IsSlotModified(id string) bool {
	return c.slots.IsDirty(id)
}

// InitializeDevice writes the device program onto the drive and fills in
// any settings the config file is missing.
func (c *Controller) InitializeDevice(drive *Drive) {
	if !c.checkDrive(drive) {
		return
	}

	if !c.confirm.Confirm(c.initPrompt(drive)) {
		return
	}

	written, err := c.provisioner.Provision(drive.Path)
	if ensureErr := c.config.EnsureDefaults(drive.Path); ensureErr != nil {
		c.log.Warnw("could not ensure default settings", "drive", drive.Path, "error", ensureErr)
	}

	switch {
	case err != nil:
		c.fail("initialize device", fmt.Errorf("%w: %w", ErrProvision, err))
	case !written:
		c.ui.ErrorOccurred(msgInitNothing)
	default:
		c.log.Infow("initialized device", "drive", drive.Path)
		c.ui.OperationSucceeded(fmt.Sprintf("Initialized device files on %s", drive.Path))
	}
}

func (c *Controller) initPrompt(drive *Drive) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, msgInitAsk, drive.Path)
	sb.WriteString("\n\n")

	if c.config.Settings(drive.Path).JapaneseKeyboard {
		if ids := c.CheckJISUntypable(drive); len(ids) > 0 {
			fmt.Fprintf(&sb, "Warning: slots %s contain characters a Japanese keyboard cannot type (%s).\n\n",
				strings.Join(ids, ", "), textcheck.JISUntypableDescription())
		}
	}
	if ids := c.CheckNonASCII(drive); len(ids) > 0 {
		fmt.Fprintf(&sb, "Note: slots %s contain non-ASCII characters, which the device skips.\n\n",
			strings.Join(ids, ", "))
	}

	sb.WriteString(msgContinue)
	return sb.String()
}

// Settings fills in missing keys and then reads the drive's settings.
// Read failures fall back to the defaults.
func (c *Controller) Settings(drive *Drive) Settings {
	if !IsValidDrive(drive) {
		return DefaultSettings()
	}

	if err := c.config.EnsureDefaults(drive.Path); err != nil {
		c.log.Warnw("could not ensure default settings", "drive", drive.Path, "error", err)
	}

	return c.config.Settings(drive.Path)
}

func (c *Controller) SaveStartupDelay(drive *Drive, text string) {
	if !c.checkDrive(drive) {
		return
	}

	delay, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || delay < 0 {
		c.ui.ErrorOccurred("Startup delay must be a whole number of seconds, 0 or more")
		return
	}

	if err := c.config.WriteInt(drive.Path, KeyStartupDelay, delay); err != nil {
		c.fail("save startup delay", err)
		return
	}

	c.ui.OperationSucceeded(fmt.Sprintf("Saved startup delay: %d s", delay))
}

func (c *Controller) SaveTypingDelay(drive *Drive, text string) {
	if !c.checkDrive(drive) {
		return
	}

	delay, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(delay) || math.IsInf(delay, 0) || delay < 0 {
		c.ui.ErrorOccurred("Typing delay must be a number of seconds, 0 or more")
		return
	}

	if err := c.config.WriteFloat(drive.Path, KeyTypingDelay, delay); err != nil {
		c.fail("save typing delay", err)
		return
	}

	c.ui.OperationSucceeded(fmt.Sprintf("Saved typing delay: %g s", delay))
}

func (c *Controller) saveBool(drive *Drive, key string, value bool, success string) {
	if !c.checkDrive(drive) {
		return
	}

	if err := c.config.WriteBool(drive.Path, key, value); err != nil {
		c.fail("save "+key, err)
		return
	}

	c.ui.OperationSucceeded(success)
}

func (c *Controller) SaveAddFinalEnter(drive *Drive, value bool) {
	mode := "send text as is"
	if value {
		mode = "press Enter after the text"
	}
	c.saveBool(drive, KeyAddFinalEnter, value, "Saved final Enter setting: "+mode)
}

func (c *Controller) SaveModifierKeys(drive *Drive, value bool) {
	mode := "disabled"
	if value {
		mode = "enabled"
	}
	c.saveBool(drive, KeyEnableModifierKeys, value, "Saved modifier keys setting: "+mode)
}

func (c *Controller) SaveJapaneseKeyboard(drive *Drive, value bool) {
	layout := "US keyboard"
	if value {
		layout = "Japanese keyboard"
	}
	c.saveBool(drive, KeyJapaneseKeyboard, value, "Saved keyboard setting: "+layout)
}

// CheckNonASCII lists the slots on the drive whose content the device will
// only partially type.
func (c *Controller) CheckNonASCII(drive *Drive) []string {
	return c.checkSlots(drive, textcheck.HasNonASCII)
}

func (c *Controller) CheckJISUntypable(drive *Drive) []string {
	return c.checkSlots(drive, textcheck.HasJISUntypable)
}

func (c *Controller) checkSlots(drive *Drive, match func(string) bool) []string {
	var ids []string
	for _, id := range c.slots.IDs() {
		slot, err := c.slots.Get(id, drive)
		if err != nil {
			c.fail("check slots", err)
			continue
		}
		if match(slot.Content) {
			ids = append(ids, id)
		}
	}
	return ids
}

// CheckContents lists the slots in contents that hold non-ASCII text, in
// slot order.
func (c *Controller) CheckContents(contents map[string]string) []string {
	var ids []string
	for id, content := range contents {
		if textcheck.HasNonASCII(content) {
			ids = append(ids, id)
		}
	}

	slices.SortFunc(ids, func(a, b string) int {
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		if ai != bi {
			return ai - bi
		}
		return strings.Compare(a, b)
	})
	return ids
}

func (c *Controller) LastSelection() (Selection, bool) {
	sel, ok, err := c.selections.LastSelection()
	if err != nil {
		c.log.Warnw("could not read last selection", "error", err)
		return Selection{}, false
	}
	return sel, ok
}

func (c *Controller) SelectedSlot(drive *Drive) (string, bool) {
	if !IsValidDrive(drive) {
		return "", false
	}

	slot, ok, err := c.selections.SelectedSlot(drive.Path)
	if err != nil {
		c.log.Warnw("could not read selected slot", "drive", drive.Path, "error", err)
		return "", false
	}
	return slot, ok
}

func (c *Controller) recordSelection(drive *Drive, id string) {
	sel := Selection{DrivePath: drive.Path, Slot: id, UpdatedAt: c.now()}
	if err := c.selections.SetSelection(sel); err != nil {
		c.log.Warnw("could not record selection", "drive", drive.Path, "slot", id, "error", err)
	}
}
