package sqlite

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"codeberg.org/miketth/picoclip/pkg/selectionstore/sqlite/migrations"
	"database/sql"
	"errors"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"time"
)

const (
	queryLast = `select drive_path, slot, updated_at from selections
order by updated_at desc limit 1`
	querySlot   = `select slot from selections where drive_path = ?`
	querySelect = `insert into selections (drive_path, slot, updated_at) values (?, ?, ?)
on conflict (drive_path) do update set slot = excluded.slot, updated_at = excluded.updated_at`
)

type SelectionStore struct {
	db *sql.DB
}

func NewSelectionStore(filename string, log *zap.SugaredLogger) (*SelectionStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SelectionStore{db: db}, nil
}

func (s *SelectionStore) Close() error {
	return s.db.Close()
}

func (s *SelectionStore) LastSelection() (picoclip.Selection, bool, error) {
	var (
		sel     picoclip.Selection
		updated int64
	)

	err := s.db.QueryRow(queryLast).Scan(&sel.DrivePath, &sel.Slot, &updated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return picoclip.Selection{}, false, nil
	case err != nil:
		return picoclip.Selection{}, false, fmt.Errorf("sqlite select: %w", err)
	}

	sel.UpdatedAt = time.UnixMilli(updated)
	return sel, true, nil
}

func (s *SelectionStore) SelectedSlot(drivePath string) (string, bool, error) {
	var slot string

	err := s.db.QueryRow(querySlot, drivePath).Scan(&slot)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("sqlite select: %w", err)
	}

	return slot, true, nil
}

func (s *SelectionStore) SetSelection(sel picoclip.Selection) error {
	if sel.UpdatedAt.IsZero() {
		sel.UpdatedAt = time.Now()
	}

	if _, err := s.db.Exec(querySelect, sel.DrivePath, sel.Slot, sel.UpdatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}

	return nil
}
