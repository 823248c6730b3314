// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
)

// FuncService adapts a blocking function to suture.Service. It is used for
// background loops that have no type of their own, such as the catalog
// cache janitor.
//
//	janitor := services.NewFuncService("catalog-cache-janitor", func(ctx context.Context) error {
//	    client.Cache().Run(ctx, time.Minute)
//	    return ctx.Err()
//	})
type FuncService struct {
	name string
	run  func(ctx context.Context) error
}

// NewFuncService creates a named service around run. run must return when
// ctx is canceled.
func NewFuncService(name string, run func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, run: run}
}

// Serve implements suture.Service.
func (f *FuncService) Serve(ctx context.Context) error {
	return f.run(ctx)
}

func (f *FuncService) String() string {
	return f.name
}
