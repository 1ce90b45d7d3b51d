package platform

import (
	"context"
	"os"
	goruntime "runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"cluster-wizard/internal/domain"
)

// Linux package manager marker files, checked in priority order before any
// command probing.
const (
	debianMarker = "/etc/debian_version"
	redhatMarker = "/etc/redhat-release"
	archMarker   = "/etc/arch-release"
)

// Detector determines host platform identity and the available package manager.
type Detector struct {
	goos          string
	goarch        string
	statFile      func(string) (os.FileInfo, error)
	probe         func(ctx context.Context, commandLine string) bool
	hostInfo      func(ctx context.Context) (*host.InfoStat, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	cpuCounts     func(ctx context.Context) (int, error)
}

// commandProber is the quiet probe surface the detector needs from the runner.
type commandProber interface {
	Probe(ctx context.Context, commandLine string) bool
}

// NewDetector builds a detector using real OS dependencies.
func NewDetector(prober commandProber) *Detector {
	return &Detector{
		goos:          goruntime.GOOS,
		goarch:        goruntime.GOARCH,
		statFile:      os.Stat,
		probe:         prober.Probe,
		hostInfo:      host.InfoWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		cpuCounts: func(ctx context.Context) (int, error) {
			return cpu.CountsWithContext(ctx, true)
		},
	}
}

// DetectPlatform reads host identity fresh on every call. Inventory lookups
// that fail degrade to zero values rather than failing detection.
func (d *Detector) DetectPlatform(ctx context.Context) domain.PlatformInfo {
	info := domain.PlatformInfo{
		Family:   familyForGOOS(d.goos),
		Arch:     d.goarch,
		CPUCount: goruntime.NumCPU(),
	}

	if hostStat, err := d.hostInfo(ctx); err == nil {
		info.Release = hostStat.PlatformVersion
		info.Hostname = hostStat.Hostname
	}
	if counts, err := d.cpuCounts(ctx); err == nil && counts > 0 {
		info.CPUCount = counts
	}
	if vm, err := d.virtualMemory(ctx); err == nil {
		info.MemoryGiB = roundToGiB(vm.Total)
	}

	return info
}

// DetectPackageManager selects exactly one package manager for the platform.
// Marker files win over command probes; a failing probe simply moves
// detection to the next candidate.
func (d *Detector) DetectPackageManager(ctx context.Context, platform domain.PlatformInfo) domain.PackageManager {
	switch platform.Family {
	case domain.OSMacOS:
		return domain.PkgHomebrew
	case domain.OSWindows:
		if d.probe(ctx, "winget --version") {
			return domain.PkgWinget
		}
		if d.probe(ctx, "choco --version") {
			return domain.PkgChocolatey
		}
		return domain.PkgUnknown
	case domain.OSLinux:
		if d.markerExists(debianMarker) {
			return domain.PkgApt
		}
		if d.markerExists(redhatMarker) {
			return domain.PkgYum
		}
		if d.markerExists(archMarker) {
			return domain.PkgPacman
		}
		if d.probe(ctx, "dnf --version") {
			return domain.PkgDnf
		}
		return domain.PkgUnknown
	default:
		return domain.PkgUnknown
	}
}

// markerExists reports whether a distro marker file is present.
func (d *Detector) markerExists(path string) bool {
	info, err := d.statFile(path)
	return err == nil && !info.IsDir()
}

// familyForGOOS maps Go's OS identifiers onto wizard OS families.
func familyForGOOS(goos string) domain.OSFamily {
	switch goos {
	case "windows":
		return domain.OSWindows
	case "darwin":
		return domain.OSMacOS
	case "linux":
		return domain.OSLinux
	default:
		return domain.OSUnsupported
	}
}

// roundToGiB converts bytes to the nearest whole GiB.
func roundToGiB(total uint64) int {
	return int((total + (1 << 29)) >> 30)
}

// NewDetectorForTests creates a detector with injectable dependencies.
func NewDetectorForTests(
	goos string,
	goarch string,
	statFile func(string) (os.FileInfo, error),
	probe func(ctx context.Context, commandLine string) bool,
) *Detector {
	return &Detector{
		goos:     goos,
		goarch:   goarch,
		statFile: statFile,
		probe:    probe,
		hostInfo: func(context.Context) (*host.InfoStat, error) {
			return &host.InfoStat{}, nil
		},
		virtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{}, nil
		},
		cpuCounts: func(context.Context) (int, error) {
			return goruntime.NumCPU(), nil
		},
	}
}
