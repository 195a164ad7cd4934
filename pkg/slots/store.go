package slots

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"fmt"
	"go.uber.org/zap"
	"slices"
	"strconv"
	"time"
)

const Count = 5

// Store keeps the slot buffers in memory. A slot with empty content is read
// from its file on the next Get that comes with a drive.
type Store struct {
	slots map[string]*picoclip.Slot
	files *Files
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewStore(files *Files, log *zap.SugaredLogger) *Store {
	s := &Store{
		slots: make(map[string]*picoclip.Slot, Count),
		files: files,
		log:   log,
		now:   time.Now,
	}

	for i := 1; i <= Count; i++ {
		id := strconv.Itoa(i)
		s.slots[id] = &picoclip.Slot{ID: id, LastModified: s.now()}
	}

	return s
}

func (s *Store) slot(id string) (*picoclip.Slot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("slot %q: %w", id, picoclip.ErrInvalidSlot)
	}
	return slot, nil
}

func (s *Store) Get(id string, drive *picoclip.Drive) (picoclip.Slot, error) {
	slot, err := s.slot(id)
	if err != nil {
		return picoclip.Slot{}, err
	}

	if slot.Content != "" || drive == nil || drive.Path == "" {
		return *slot, nil
	}

	res := s.files.Read(drive.Path, id)
	switch res.Status {
	case Found:
		slot.Content = res.Content
		slot.Dirty = false
	case NotFound:
		slot.Content = ""
		slot.Dirty = false
	default:
		slot.Content = ""
		slot.Dirty = false
		return *slot, fmt.Errorf("load slot %s from %s: %w: %w", id, drive.Path, picoclip.ErrSlotLoadFailed, res.Err)
	}

	return *slot, nil
}

func (s *Store) Update(id, content string) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}

	if slot.Content == content {
		return nil
	}

	slot.Content = content
	slot.Dirty = true
	slot.LastModified = s.now()
	return nil
}

func (s *Store) Save(id string, drive *picoclip.Drive) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	if !picoclip.IsValidDrive(drive) {
		return fmt.Errorf("save slot %s: %w", id, picoclip.ErrInvalidDrive)
	}

	if err := s.files.Write(drive.Path, id, slot.Content); err != nil {
		return fmt.Errorf("save slot %s to %s: %w: %w", id, drive.Path, picoclip.ErrSlotSaveFailed, err)
	}

	slot.Dirty = false
	s.log.Debugw("saved slot", "slot", id, "drive", drive.Path, "bytes", len(slot.Content))
	return nil
}

// Reload reads the slot file even when the buffer already holds content.
// On failure the buffer is left as it was.
func (s *Store) Reload(id string, drive *picoclip.Drive) (picoclip.Slot, error) {
	slot, err := s.slot(id)
	if err != nil {
		return picoclip.Slot{}, err
	}
	if !picoclip.IsValidDrive(drive) {
		return *slot, fmt.Errorf("reload slot %s: %w", id, picoclip.ErrInvalidDrive)
	}

	res := s.files.Read(drive.Path, id)
	if res.Status == ReadFailed {
		return *slot, fmt.Errorf("reload slot %s from %s: %w: %w", id, drive.Path, picoclip.ErrSlotLoadFailed, res.Err)
	}

	if slot.Content != res.Content {
		slot.LastModified = s.now()
	}
	slot.Content = res.Content
	slot.Dirty = false
	return *slot, nil
}

func (s *Store) ClearAll(drive *picoclip.Drive) error {
	if !picoclip.IsValidDrive(drive) {
		return fmt.Errorf("clear slots: %w", picoclip.ErrInvalidDrive)
	}

	deleteErr := s.files.DeleteAll(drive.Path, s.IDs())

	now := s.now()
	for _, slot := range s.slots {
		slot.Content = ""
		slot.Dirty = false
		slot.LastModified = now
	}

	if deleteErr != nil {
		return fmt.Errorf("clear slots on %s: %w: %w", drive.Path, picoclip.ErrSlotSaveFailed, deleteErr)
	}

	return nil
}

// IDs returns the slot ids in numeric order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b string) int {
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		return ai - bi
	})

	return ids
}

func (s *Store) IsDirty(id string) bool {
	slot, ok := s.slots[id]
	return ok && slot.Dirty
}
