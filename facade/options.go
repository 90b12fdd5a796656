// File: facade/options.go
// Author: momentics <momentics@gmail.com>
//
// Socket-level tunables named after the reference implementation's
// setsockopt constants (§6 EXPANSION). SUBSCRIBE/UNSUBSCRIBE only apply
// to a SUB socket's Pattern; setting them on any other kind reports
// api.ErrNotSupported the same way the reference library's EINVAL does.

package facade

import "time"

// Option identifies one socket-level tunable passed to SetOption/GetOption.
type Option int

const (
	OptSndHWM Option = iota
	OptRcvHWM
	OptLinger
	OptReconnectIvl
	OptReconnectIvlMax
	OptSubscribe
	OptUnsubscribe
	OptIdentity
)

// socketOptions holds one Socket's current tunable values, seeded from
// the owning Context's Config at NewSocket time.
type socketOptions struct {
	sndHWM          int
	rcvHWM          int
	linger          time.Duration
	reconnectIvl    time.Duration
	reconnectIvlMax time.Duration
	identity        []byte
}
