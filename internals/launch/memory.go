package launch

import "github.com/pbnjay/memory"

const (
	// DefaultMaxMemoryMB is used when an instance does not set max_memory_mb
	DefaultMaxMemoryMB = 2048
	// MinMemoryMB is also passed as -Xms
	MinMemoryMB = 512
)

// totalMemory is replaced in tests
var totalMemory = memory.TotalMemory

// MaxMemoryMB returns the -Xmx value in MiB. Explicit values are kept; the default is
// capped to half of the system memory. Never less than MinMemoryMB
func MaxMemoryMB(requested int) int {
	mem := requested
	if mem <= 0 {
		mem = DefaultMaxMemoryMB
		if sys := int(totalMemory() / 1024 / 1024); sys > 0 && mem > sys/2 {
			mem = sys / 2
		}
	}
	if mem < MinMemoryMB {
		mem = MinMemoryMB
	}
	return mem
}
