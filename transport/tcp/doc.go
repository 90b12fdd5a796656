// File: transport/tcp/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package tcp binds and connects ZMTP-speaking sockets over TCP. A
// Listener accepts connections and hands each one to a fresh Engine bound
// into a new Session on a chosen Reactor; a Connector dials out and
// retries with bounded exponential backoff on failure, matching the
// reference library's reconnect behavior.
package tcp
