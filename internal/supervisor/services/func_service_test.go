// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/cache"
)

func TestFuncService(t *testing.T) {
	var _ suture.Service = (*FuncService)(nil)

	boom := errors.New("boom")
	svc := NewFuncService("loop", func(ctx context.Context) error { return boom })
	if svc.String() != "loop" {
		t.Errorf("String() = %q", svc.String())
	}
	if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve() = %v, want %v", err, boom)
	}
}

func TestFuncService_CacheJanitorUnderSupervisor(t *testing.T) {
	c := cache.New("janitor-test", 10*time.Millisecond, 0)
	c.Set("k", "v")

	sup := suture.New("test-sup", suture.Spec{Timeout: time.Second})
	sup.Add(NewFuncService("catalog-cache-janitor", func(ctx context.Context) error {
		c.Run(ctx, 5*time.Millisecond)
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	defer func() {
		cancel()
		<-errCh
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 once the janitor ran", c.Len())
	}
}
