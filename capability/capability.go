// Package capability implements the architecture/feature probe behind the
// FFI capabilities entry point (§6) and the engine's vector-kernel dispatch
// table: which architecture the host is, which vector kernel family name
// applies, and whether the host actually supports it at runtime.
package capability

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Architecture is one of the tags the FFI capabilities surface reports.
type Architecture int

const (
	Unknown Architecture = iota
	X86_64
	ARM64
)

func (a Architecture) String() string {
	switch a {
	case X86_64:
		return "X86_64"
	case ARM64:
		return "ARM64"
	default:
		return "Unknown"
	}
}

// VectorFamilyName returns the vector kernel family name that matches a, or
// "" if none is defined for this architecture.
func (a Architecture) VectorFamilyName() string {
	switch a {
	case X86_64:
		return "AVX2"
	case ARM64:
		return "NEON"
	default:
		return ""
	}
}

// HostArchitecture reports the Architecture tag for runtime.GOARCH.
func HostArchitecture() Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return X86_64
	case "arm64":
		return ARM64
	default:
		return Unknown
	}
}

// Capabilities is the snapshot the FFI capabilities entry point returns:
// (architecture-tag, vector-compiled, vector-supported-on-host,
// architecture-name).
type Capabilities struct {
	Architecture       Architecture
	VectorCompiled     bool
	VectorSupportedHost bool
	ArchitectureName   string
}

// Probe reports this build/host's capabilities. VectorCompiled is always
// true in this module — the vector kernel family (kernel/vector) is
// compiled into every build, not gated by a build tag, per the single
// dispatch table design note (§9); what varies at runtime is whether the
// host actually has the instruction set the family needs.
func Probe() Capabilities {
	arch := HostArchitecture()
	return Capabilities{
		Architecture:        arch,
		VectorCompiled:      true,
		VectorSupportedHost: vectorSupportedOnHost(arch),
		ArchitectureName:    arch.VectorFamilyName(),
	}
}

// vectorSupportedOnHost reports whether the running host actually has the
// instruction set kernel/vector's family targets. On X86_64 that is AVX2,
// checked via klauspost/cpuid/v2 (a dependency already present, transitively,
// in the teacher's module). On ARM64, NEON is part of the baseline
// architecture and is always present.
func vectorSupportedOnHost(arch Architecture) bool {
	switch arch {
	case X86_64:
		return cpuid.CPU.Supports(cpuid.AVX2)
	case ARM64:
		return true
	default:
		return false
	}
}
