package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// BodyCaptureLimitBytes caps how many bytes of a response body probes read
	// for content classification.
	BodyCaptureLimitBytes = 64 * 1024
	// DefaultScanTimeout is the per-probe timeout used when the caller does
	// not request one.
	DefaultScanTimeout = 10 * time.Second
	// ProbeGracePeriod is the fixed slack added on top of every probe's
	// deadline so a slow-but-alive probe can settle before being cut off.
	ProbeGracePeriod = 2 * time.Second
	// FreeTierDailyScans caps how many scans the free tier may run per day.
	FreeTierDailyScans = 25
)
