package main

import (
	"context"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
)

// watch rescans GramDir on the given cron schedule (default every
// minute) and recompiles any *.yaml grammar whose mtime advanced
// since its last compile. Grounded in sheens' only other use of
// gorhill/cronexpr (interpreters/goja.go's cronNext builtin),
// generalized here from a single script-exposed builtin into a
// standalone scheduler.
func (s *Service) watch(ctx context.Context, schedule string) error {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return err
	}

	for {
		next := expr.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			s.rescan(ctx)
		}
	}
}

func (s *Service) rescan(ctx context.Context) {
	entries, err := ioutil.ReadDir(s.GramDir)
	if err != nil {
		log.Printf("gramd: watch readdir error: %v", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		name := grammarName(e.Name())
		mtime := e.ModTime().Unix()

		s.mu.Lock()
		last, seen := s.lastAt[name]
		s.mu.Unlock()
		if seen && last == mtime {
			continue
		}

		s.trf("watch recompiling %s", name)
		s.recompile(ctx, name)

		s.mu.Lock()
		s.lastAt[name] = mtime
		s.mu.Unlock()
	}
}

func grammarName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
