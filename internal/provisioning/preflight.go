package provisioning

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/dustin/go-humanize"

	"github.com/kenki-os/kenkictl/internal/artifact"
)

// RequiredBinaries are checked in this fixed order so a multi-missing
// system always reports the same first failure.
var RequiredBinaries = []string{"pacman", "systemctl", "zsh", "mkarchiso"}

// Requirements describes what a step needs before it may run.
type Requirements struct {
	// RequireRoot is matched exactly: a step that must run unprivileged
	// fails under root just as a privileged step fails without it.
	RequireRoot bool

	// MinFreeBytes is the free-space floor on the filesystem at Path.
	MinFreeBytes uint64
	Path         string

	// Binaries are the external tools that must be on PATH.
	Binaries []string
}

// PrivilegeError reports a privilege level mismatch in either direction.
type PrivilegeError struct {
	RequireRoot bool
	EUID        int
}

func (e *PrivilegeError) Error() string {
	if e.RequireRoot {
		return fmt.Sprintf("must run as root (current euid %d)", e.EUID)
	}
	return "must not run as root"
}

// DiskSpaceError reports available free space below the requirement.
type DiskSpaceError struct {
	Path      string
	Available uint64
	Required  uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: %s available, %s required",
		e.Path, humanize.Bytes(e.Available), humanize.Bytes(e.Required))
}

// MissingDependencyError names the first missing required binary.
type MissingDependencyError struct {
	Binary string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("required tool %q not found in PATH", e.Binary)
}

// Seams for tests; the defaults hit the real system.
var (
	geteuid  = os.Geteuid
	lookPath = exec.LookPath
	diskFree = artifact.FreeSpace
)

// CheckPreconditions validates privilege, disk space, and external
// binaries. Pure check: it changes nothing and may be re-run freely.
func CheckPreconditions(req Requirements) error {
	isRoot := geteuid() == 0
	if isRoot != req.RequireRoot {
		return &PrivilegeError{RequireRoot: req.RequireRoot, EUID: geteuid()}
	}

	if req.MinFreeBytes > 0 {
		path := req.Path
		if path == "" {
			path = "/"
		}
		free, err := diskFree(path)
		if err != nil {
			return fmt.Errorf("failed to check disk space at %s: %w", path, err)
		}
		if free < req.MinFreeBytes {
			return &DiskSpaceError{Path: path, Available: free, Required: req.MinFreeBytes}
		}
	}

	for _, bin := range req.Binaries {
		if _, err := lookPath(bin); err != nil {
			return &MissingDependencyError{Binary: bin}
		}
	}

	return nil
}
