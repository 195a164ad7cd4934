package main

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"context"
	"errors"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

func (a *app) watch(ctx context.Context, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Infow("watching drives", "interval", interval)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := a.pollDrives(ctx, interval)
		if err != nil {
			errChan <- fmt.Errorf("poll drives: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err := <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		a.log.Info("shutting down")
		wg.Wait()
		return nil
	case err != nil:
		return err
	}

	return nil
}

// mountRoots lists the directories desktop automounters create mount points in.
func mountRoots() []string {
	roots := []string{"/media", "/mnt"}
	if u, err := user.Current(); err == nil {
		roots = append(roots,
			filepath.Join("/media", u.Username),
			filepath.Join("/run/media", u.Username),
		)
	}
	return roots
}

// newMountWatcher watches whichever of roots exist. A drive showing up there
// triggers a refresh before the next tick.
func newMountWatcher(roots []string, log *zap.SugaredLogger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	watched := 0
	for _, root := range roots {
		if err := watcher.Add(root); err != nil {
			log.Debugw("not watching mount root", "dir", root, "error", err)
			continue
		}
		watched++
	}
	log.Debugw("watching mount roots", "count", watched)

	return watcher, nil
}

func (a *app) pollDrives(ctx context.Context, interval time.Duration) error {
	var known []picoclip.Drive
	first := true

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		events  <-chan fsnotify.Event
		errorCh <-chan error
	)
	roots := a.mountRoots
	if roots == nil {
		roots = mountRoots()
	}
	watcher, err := newMountWatcher(roots, a.log)
	if err != nil {
		a.log.Warnw("mount watcher unavailable, polling only", "error", err)
	} else {
		defer watcher.Close()
		events, errorCh = watcher.Events, watcher.Errors
	}

	for {
		current := a.locator.List()
		added, removed := diffDrives(known, current)

		for _, d := range removed {
			a.log.Infow("drive removed", "label", d.Label, "path", d.Path)
		}
		for _, d := range added {
			d := d
			a.log.Infow("drive attached", "label", d.Label, "path", d.Path)
			// fills in missing settings on the drive
			settings := a.ctrl.Settings(&d)
			a.log.Debugw("drive settings", "path", d.Path, "settings", settings)
		}

		if first || len(added) > 0 || len(removed) > 0 {
			a.ui.DrivesUpdated(current)
			_, _ = daemon.SdNotify(false, fmt.Sprintf("STATUS=%d drive(s) attached", len(current)))
		}
		known = current
		first = false

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.log.Debugw("mount root changed", "path", event.Name, "op", event.Op.String())
		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			a.log.Warnw("mount watcher error", "error", err)
		}
	}
}

// diffDrives compares two listings by path.
func diffDrives(prev, cur []picoclip.Drive) (added, removed []picoclip.Drive) {
	prevPaths := make(map[string]struct{}, len(prev))
	for _, d := range prev {
		prevPaths[d.Path] = struct{}{}
	}
	curPaths := make(map[string]struct{}, len(cur))
	for _, d := range cur {
		curPaths[d.Path] = struct{}{}
		if _, ok := prevPaths[d.Path]; !ok {
			added = append(added, d)
		}
	}
	for _, d := range prev {
		if _, ok := curPaths[d.Path]; !ok {
			removed = append(removed, d)
		}
	}
	return added, removed
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}
