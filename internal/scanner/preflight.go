package scanner

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckResult captures the outcome of one preflight check.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// checkDirectoryAccess verifies that the directory exists and carries the
// requested permission bits.
func checkDirectoryAccess(name, path string, mode uint32) CheckResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return CheckResult{Name: name, Passed: true, Detail: fmt.Sprintf("%s (access ok)", path)}
}

// readAccess is the permission mask for directories the scan only reads.
const readAccess = unix.R_OK | unix.X_OK

// readWriteAccess is the permission mask for directories the scan mutates.
const readWriteAccess = unix.R_OK | unix.W_OK | unix.X_OK
