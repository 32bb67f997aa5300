//go:build !windows

package artifact

import "syscall"

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem containing path. Bavail rather than Bfree: root-reserved
// blocks must not count toward the model download budget.
func FreeSpace(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
