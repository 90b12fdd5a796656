// File: reactor/mailbox_drain.go
// Author: momentics <momentics@gmail.com>
//
// MailboxDrain adapts any Mailbox into a Pollable so its owner can be
// registered with a Reactor the same way the Reactor drains its own
// Mailbox (drainMailbox in reactor.go): read-ready on the Signaler means
// one or more Commands are waiting, and each is dispatched to its Dest.
// Session uses this to receive ACTIVATE_READ/ACTIVATE_WRITE/PIPE_TERM from
// a Pipe whose other end lives on a different goroutine.
package reactor

import "github.com/nanozmq/zmqcore/internal/concurrency"

type MailboxDrain struct {
	mb *concurrency.Mailbox
}

// NewMailboxDrain wraps mb for registration via Reactor.AddFD.
func NewMailboxDrain(mb *concurrency.Mailbox) *MailboxDrain {
	return &MailboxDrain{mb: mb}
}

func (d *MailboxDrain) OnReadable() {
	for {
		cmd, ok := d.mb.Recv(0)
		if !ok {
			return
		}
		if cmd.Dest != nil {
			cmd.Dest.HandleCommand(cmd)
		}
	}
}

func (d *MailboxDrain) OnWritable() {}

var _ Pollable = (*MailboxDrain)(nil)
