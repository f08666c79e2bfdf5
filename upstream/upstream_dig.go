package upstream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/log"
	"github.com/towalink/hostname2set/option"

	"github.com/miekg/dns"
)

// digUpstream resolves through the external dig tool.
type digUpstream struct {
	logger  log.ContextLogger
	digPath string
	server  string
}

var _ adapter.Upstream = (*digUpstream)(nil)

func NewDigUpstream(logger log.ContextLogger, options option.UpstreamOption) (adapter.Upstream, error) {
	u := &digUpstream{
		logger:  logger,
		digPath: options.DigPath,
		server:  options.Address,
	}
	if u.digPath == "" {
		u.digPath = constant.DigCommand
	}
	return u, nil
}

func (u *digUpstream) Tag() string {
	return constant.UpstreamDig
}

func (u *digUpstream) Type() string {
	return constant.UpstreamDig
}

func (u *digUpstream) Lookup(ctx context.Context, name string, qType uint16) ([]string, error) {
	typeStr, ok := dns.TypeToString[qType]
	if !ok {
		return nil, fmt.Errorf("unknown query type: %d", qType)
	}
	args := []string{"+short"}
	if u.server != "" {
		args = append(args, "@"+u.server)
	}
	args = append(args, typeStr, name)
	u.logger.InfoContext(ctx, fmt.Sprintf("exec: %s %s", u.digPath, strings.Join(args, " ")))
	cmd := exec.CommandContext(ctx, u.digPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%s exited with %d: %s", u.digPath, exitErr.ExitCode(), strings.TrimSpace(stderr.String()+" "+string(output)))
		}
		u.logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	return parseDigOutput(output), nil
}

// parseDigOutput splits `dig +short` output into records, one per line,
// dropping blank lines and ";;" diagnostics.
func parseDigOutput(output []byte) []string {
	var records []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		records = append(records, line)
	}
	return records
}
