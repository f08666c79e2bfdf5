package hostname2set

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/towalink/hostname2set/constant"
	"github.com/towalink/hostname2set/lib/types"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*cobra.Command, []string) {
	cmd := newMainCommand()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, cmd.Flags().Args()
}

func TestBuildOptionDefaultTable(t *testing.T) {
	cmd, args := parse(t, "-t", "A", "myset", "host1.example,host2.example")
	require.NoError(t, validateArgs(cmd, args))
	options, err := buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, types.IPv4, options.Family)
	assert.Equal(t, types.TableLocator{Kind: types.TableInet, Name: "filter"}, options.Table)
	assert.Equal(t, "myset", options.Set)
	assert.Equal(t, types.Listable[string]{"host1.example", "host2.example"}, options.Hostnames)
	assert.Equal(t, constant.UpstreamSystem, options.UpstreamOption.Type)
	assert.Equal(t, constant.BackendNftables, options.BackendOption.Type)
	require.NoError(t, options.Validate())
}

func TestBuildOptionFullTarget(t *testing.T) {
	cmd, args := parse(t, "--debug", "-b", "ipset", "-T", "90s", "-s", "192.0.2.53", "ip6", "mytable", "myset", "a.example")
	options, err := buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, types.IPv6, options.Family)
	assert.Equal(t, types.TableLocator{Kind: types.TableIP6, Name: "mytable"}, options.Table)
	assert.Equal(t, types.Listable[string]{"a.example"}, options.Hostnames)
	assert.True(t, options.LogOption.Debug)
	assert.Equal(t, constant.BackendIPSet, options.BackendOption.Type)
	assert.Equal(t, types.TimeDuration(90*time.Second), options.BackendOption.Timeout)
	assert.Equal(t, constant.UpstreamUDP, options.UpstreamOption.Type)
	assert.Equal(t, "192.0.2.53", options.UpstreamOption.Address)
}

func TestBuildOptionConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("type: A\ntable: ip nat\nset: fromfile\nhostnames: [a.example]\nbackend:\n  timeout: 1h\n"), 0o644))

	cmd, args := parse(t, "-c", file)
	require.NoError(t, validateArgs(cmd, args))
	options, err := buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, types.IPv4, options.Family)
	assert.Equal(t, "ip nat", options.Table.String())
	assert.Equal(t, "fromfile", options.Set)
	assert.Equal(t, types.TimeDuration(time.Hour), options.BackendOption.Timeout)

	cmd, args = parse(t, "-c", file, "-t", "AAAA", "myset", "b.example")
	options, err = buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, types.IPv6, options.Family)
	assert.Equal(t, "ip nat", options.Table.String())
	assert.Equal(t, "myset", options.Set)
	assert.Equal(t, types.Listable[string]{"b.example"}, options.Hostnames)
}

func TestBuildOptionErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"bad type":       {"-t", "MX", "myset", "a.example"},
		"empty hostname": {"myset", "a.example,,b.example"},
		"bad table kind": {"ipx", "filter", "myset", "a.example"},
		"empty set":      {" ", "a.example"},
	} {
		cmd, rest := parse(t, args...)
		_, err := buildOption(cmd, rest)
		assert.Error(t, err, name)
	}
}

func TestValidateArgs(t *testing.T) {
	cmd := newMainCommand()
	for _, n := range []int{0, 1, 3, 5} {
		err := validateArgs(cmd, make([]string, n))
		var uErr *usageError
		assert.ErrorAs(t, err, &uErr, n)
	}
	assert.NoError(t, validateArgs(cmd, make([]string, 2)))
	assert.NoError(t, validateArgs(cmd, make([]string, 4)))
}

func TestBuildOptionAfterDoubleDash(t *testing.T) {
	cmd, args := parse(t, "-t", "A", "--", "version", "a.example")
	require.NoError(t, validateArgs(cmd, args))
	options, err := buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, "version", options.Set)
	assert.Equal(t, types.IPv4, options.Family)

	cmd, args = parse(t, "--", "ip", "lookup", "help", "a.example")
	options, err = buildOption(cmd, args)
	require.NoError(t, err)
	assert.Equal(t, "ip lookup", options.Table.String())
	assert.Equal(t, "help", options.Set)
}

func executeTest(args ...string) (int, string) {
	cmd := newMainCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	return execute(cmd, args), out.String()
}

func TestExecuteExitCodes(t *testing.T) {
	code, out := executeTest("-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "tableKind tableName")

	code, out = executeTest("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, constant.Version)

	for name, args := range map[string][]string{
		"no args":      {},
		"one arg":      {"myset"},
		"three args":   {"inet", "myset", "a.example"},
		"unknown flag": {"--bogus", "myset", "a.example"},
		"bad type":     {"-t", "PTR", "myset", "a.example"},
		"-T 500ms":     {"-n", "-T", "500ms", "myset", "a.example"},
	} {
		code, _ = executeTest(args...)
		assert.Equal(t, 1, code, name)
	}
}

func startDNSServer(t *testing.T) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	started := make(chan struct{})
	server := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			if r.Question[0].Name == "a.example." && r.Question[0].Qtype == dns.TypeA {
				rr, _ := dns.NewRR("a.example. 60 IN A 192.0.2.1")
				m.Answer = append(m.Answer, rr)
			}
			w.WriteMsg(m)
		}),
		NotifyStartedFunc: func() { close(started) },
	}
	go server.ActivateAndServe()
	<-started
	t.Cleanup(func() {
		server.Shutdown()
	})
	return pc.LocalAddr().String()
}

func TestExecuteDryRun(t *testing.T) {
	server := startDNSServer(t)
	code, _ := executeTest("-q", "-n", "-s", server, "-t", "A", "myset", "a.example")
	assert.Equal(t, 0, code)

	code, _ = executeTest("-q", "-n", "-s", server, "-t", "A", "myset", "a.example,b.example")
	assert.Equal(t, 1, code)

	code, _ = executeTest("-q", "-n", "-s", server, "myset", "a.example")
	assert.Equal(t, 1, code)
}

func TestExecuteSetNamedLikeSubcommand(t *testing.T) {
	server := startDNSServer(t)
	code, _ := executeTest("-q", "-n", "-s", server, "-t", "A", "version", "a.example")
	assert.Equal(t, 1, code)

	code, _ = executeTest("-q", "-n", "-s", server, "-t", "A", "--", "version", "a.example")
	assert.Equal(t, 0, code)

	code, out := executeTest("-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "hostname2set -- version host.example")
}

func TestExecuteLookup(t *testing.T) {
	server := startDNSServer(t)
	code, out := executeTest("lookup", "-q", "-s", server, "-t", "A", "a.example")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a.example\tA\t192.0.2.1\n", out)

	code, _ = executeTest("lookup", "-q", "-s", server, "a.example")
	assert.Equal(t, 1, code)
}
