package picoclip

import "errors"

var (
	ErrInvalidSlot    = errors.New("invalid slot")
	ErrSlotLoadFailed = errors.New("slot load failed")
	ErrSlotSaveFailed = errors.New("slot save failed")
	ErrConfigIO       = errors.New("config io failed")
	ErrInvalidDrive   = errors.New("no valid drive selected")
	ErrProvision      = errors.New("provisioning failed")
)
