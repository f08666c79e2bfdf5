package upstream

import (
	"fmt"
	"os/exec"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/option"
)

// Precheck reports whether the resolution mechanism selected by options can
// be used on this system, without sending any query.
func Precheck(options option.UpstreamOption) error {
	switch options.Type {
	case constant.UpstreamSystem, "":
		resolvConf := options.ResolvConf
		if resolvConf == "" {
			resolvConf = constant.ResolvConfPath
		}
		_, err := systemServer(resolvConf)
		return err
	case constant.UpstreamDig:
		digPath := options.DigPath
		if digPath == "" {
			digPath = constant.DigCommand
		}
		_, err := exec.LookPath(digPath)
		if err != nil {
			return fmt.Errorf("%s not found: %s", digPath, err)
		}
		return nil
	default:
		return nil
	}
}
