// Package constants centralizes shared tunables (file permissions, capture
// limits, timeouts) so probe code and commands agree on the same values.
package constants
