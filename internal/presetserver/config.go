// Copyright (c) 2017 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT

package presetserver

import (
	"fmt"
	"time"

	"github.com/westerndigitalcorporation/floe/internal/core"
)

// Config specifies various parameters.
type Config struct {
	// The folder that is always scanned, in addition to any extra folders set
	// with SetExtraScanFolders. May be empty.
	AlwaysScannedFolder string

	// How long the server sleeps between loop iterations when nothing
	// signals it. Also bounds how quickly Shutdown is observed.
	PollInterval time.Duration

	// How deep below a scan root the walker descends.
	MaxScanDepth int

	// Read throughput limit while scanning. 0 means unlimited.
	ScanBytesPerSecond float64

	// Where the parsed-preset cache lives. Empty disables the cache.
	CachePath string

	// How many cache records are kept in memory.
	CacheLRUSize int

	// Use fsnotify to watch scanned folders. When false, or when fsnotify
	// can't be set up, folder modification times are compared every tick.
	UseFSNotify bool

	// How often a root that failed to scan is retried.
	ErrorRetryInterval time.Duration
}

// DefaultConfig includes default configuration parameters.
var DefaultConfig = Config{
	PollInterval: 250 * time.Millisecond,
	MaxScanDepth: core.MaxFolderDepth,
	CacheLRUSize: 1024,
	UseFSNotify:  true,

	ErrorRetryInterval: 5 * time.Second,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 || c.PollInterval > time.Second {
		return fmt.Errorf("%w: poll interval %s must be in (0, 1s]", core.ErrInvalidArgument.Error(), c.PollInterval)
	}
	if c.MaxScanDepth < 0 || c.MaxScanDepth > core.MaxFolderDepth {
		return fmt.Errorf("%w: max scan depth %d must be in [0, %d]", core.ErrInvalidArgument.Error(), c.MaxScanDepth, core.MaxFolderDepth)
	}
	if c.ScanBytesPerSecond < 0 {
		return fmt.Errorf("%w: negative scan rate", core.ErrInvalidArgument.Error())
	}
	if c.CachePath != "" && c.CacheLRUSize <= 0 {
		return fmt.Errorf("%w: cache LRU size must be positive", core.ErrInvalidArgument.Error())
	}
	if c.ErrorRetryInterval <= 0 {
		return fmt.Errorf("%w: error retry interval must be positive", core.ErrInvalidArgument.Error())
	}
	return nil
}
