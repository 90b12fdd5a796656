// File: api/command.go
// Author: momentics <momentics@gmail.com>
//
// Command is the only structure allowed to cross a Mailbox boundary (§3, §5):
// a tagged record naming a destination object and a payload variant. Modeled
// as a single struct with a tag rather than an interface hierarchy so
// dispatch stays a plain switch, per §9's guidance on avoiding virtual
// dispatch on an abstract command target.

package api

// CommandTag identifies the payload variant carried by a Command.
type CommandTag int

const (
	CmdAttachEngine  CommandTag = iota // ATTACH: bind an Engine into a Session
	CmdActivateRead                    // ACTIVATE_READ: a pipe gained readable data
	CmdActivateWrite                   // ACTIVATE_WRITE: a pipe gained writable space
	CmdHiccup                          // HICCUP: peer pipe was replaced after reconnect
	CmdPipeTerm                        // PIPE_TERM: begin pipe teardown
	CmdPipeTermAck                     // PIPE_TERM_ACK: pipe teardown acknowledged
	CmdStop                            // STOP: tell a Reactor to shut down
	CmdTermReq                         // TERM_REQ: a child requests termination
	CmdTerm                            // TERM: begin session/engine termination
	CmdTermAck                         // TERM_ACK: termination acknowledged
	CmdBind                            // BIND: attach a freshly accepted engine to a socket
)

func (t CommandTag) String() string {
	switch t {
	case CmdAttachEngine:
		return "ATTACH"
	case CmdActivateRead:
		return "ACTIVATE_READ"
	case CmdActivateWrite:
		return "ACTIVATE_WRITE"
	case CmdHiccup:
		return "HICCUP"
	case CmdPipeTerm:
		return "PIPE_TERM"
	case CmdPipeTermAck:
		return "PIPE_TERM_ACK"
	case CmdStop:
		return "STOP"
	case CmdTermReq:
		return "TERM_REQ"
	case CmdTerm:
		return "TERM"
	case CmdTermAck:
		return "TERM_ACK"
	case CmdBind:
		return "BIND"
	default:
		return "UNKNOWN"
	}
}

// CommandHandler is implemented by every object addressable through a Mailbox.
type CommandHandler interface {
	// HandleCommand processes one command; called only on the owning
	// Reactor's own goroutine.
	HandleCommand(cmd Command)
}

// Command is transported by value through Mailboxes (§3).
type Command struct {
	Tag  CommandTag
	Dest CommandHandler
	// Arg carries the tag-specific payload (e.g. an Engine for CmdAttachEngine,
	// a *Pipe for CmdActivateRead/CmdPipeTerm, nothing for CmdStop).
	Arg any
}
