//go:build !linux

package hostname2set

import (
	"fmt"
	"os"
)

func checkPrivilege() error {
	if euid := os.Geteuid(); euid != 0 {
		return fmt.Errorf("root privilege required, running as uid %d", euid)
	}
	return nil
}
