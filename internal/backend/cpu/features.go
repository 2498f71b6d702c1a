package cpu

import (
	"runtime"
	"strings"

	xcpu "golang.org/x/sys/cpu"
)

// Features describes the SIMD capabilities of the host.
type Features struct {
	Arch    string
	AVX2    bool
	AVX512F bool
	FMA     bool
	NEON    bool
}

// HostFeatures detects the SIMD capabilities of the running host.
func HostFeatures() Features {
	return Features{
		Arch:    runtime.GOARCH,
		AVX2:    xcpu.X86.HasAVX2,
		AVX512F: xcpu.X86.HasAVX512F,
		FMA:     xcpu.X86.HasFMA,
		NEON:    xcpu.ARM64.HasASIMD,
	}
}

// String lists the detected extensions, e.g. "amd64 avx2 fma".
func (f Features) String() string {
	parts := []string{f.Arch}
	if f.AVX2 {
		parts = append(parts, "avx2")
	}
	if f.AVX512F {
		parts = append(parts, "avx512f")
	}
	if f.FMA {
		parts = append(parts, "fma")
	}
	if f.NEON {
		parts = append(parts, "neon")
	}
	return strings.Join(parts, " ")
}
