package upstream

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/towalink/hostname2set/log"

	"github.com/miekg/dns"
)

// exchangeConn writes dnsMsg to conn and reads one response. conn is closed
// before returning.
func exchangeConn(ctx context.Context, logger log.ContextLogger, conn net.Conn, dnsMsg *dns.Msg, queryTimeout time.Duration) (*dns.Msg, error) {
	dnsConn := &dns.Conn{Conn: conn, UDPSize: dns.DefaultMsgSize}
	defer dnsConn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		dnsConn.SetDeadline(deadline)
	} else {
		dnsConn.SetDeadline(time.Now().Add(queryTimeout))
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			dnsConn.SetDeadline(time.Unix(1, 0))
		case <-done:
		}
	}()
	logger.DebugContext(ctx, "write dns message")
	err := dnsConn.WriteMsg(dnsMsg)
	if err != nil {
		err = fmt.Errorf("write dns message fail: %w", wrapCanceled(ctx, err))
		logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	logger.DebugContext(ctx, "read dns message")
	respMsg, err := dnsConn.ReadMsg()
	if err != nil {
		err = fmt.Errorf("read dns message fail: %w", wrapCanceled(ctx, err))
		logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	if respMsg.Id != dnsMsg.Id {
		err = fmt.Errorf("read dns message fail: id mismatch, want %d, got %d", dnsMsg.Id, respMsg.Id)
		logger.ErrorContext(ctx, err.Error())
		return nil, err
	}
	if respMsg.Truncated {
		logger.WarnContext(ctx, fmt.Sprintf("truncated response: %s", logDNSMsg(dnsMsg)))
	}
	logger.DebugContext(ctx, "read dns message success")
	return respMsg, nil
}

func wrapCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
