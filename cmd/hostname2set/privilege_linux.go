//go:build linux

package hostname2set

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func checkPrivilege() error {
	if euid := unix.Geteuid(); euid != 0 {
		return fmt.Errorf("root privilege required, running as uid %d", euid)
	}
	return nil
}
