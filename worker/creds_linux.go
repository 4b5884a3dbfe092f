package worker

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// dropCredentials downgrades the process to the target identity. Group
// identity changes first: once the uid is dropped the process no longer
// has the authority to call setresgid or setgroups, so reversing the order
// is a security defect.
func dropCredentials(uid, gid int) error {
	if err := unix.Setresgid(gid, gid, gid); err != nil {
		return fmt.Errorf("setresgid(%d): %w", gid, err)
	}
	groups, err := unix.Getgroups()
	if err != nil {
		return fmt.Errorf("getgroups: %w", err)
	}
	kept := make([]int, 0, len(groups))
	for _, g := range groups {
		if g != 0 {
			kept = append(kept, g)
		}
	}
	if err := unix.Setgroups(kept); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setresuid(uid, uid, uid); err != nil {
		return fmt.Errorf("setresuid(%d): %w", uid, err)
	}
	return nil
}
