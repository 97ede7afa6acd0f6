// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / (time.Duration)(cfg.FramesPerSecond)
	}

	return &Time{
		fps:       cfg.FramesPerSecond,
		fpsTicker: time.NewTicker(interval),
		last:      time.Now(),
	}
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	last time.Time
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// Delta returns the milliseconds passed since the previous call.
func (t *Time) Delta() uint32 {
	now := time.Now()
	delta := now.Sub(t.last)
	t.last = now
	return uint32(delta.Milliseconds())
}

// Stop releases the tickers.
func (t *Time) Stop() {
	t.fpsTicker.Stop()
}
