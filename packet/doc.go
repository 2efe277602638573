// Package packet defines the atomic message unit exchanged between
// components.
//
// A packet is either a Data packet carrying a payload or a bracket marker
// (OpenBracket/CloseBracket) delimiting a nested sub-stream. Brackets on a
// given scope nest like matched parentheses; channels track the depth and
// reject a close below depth zero.
//
// Packets carry exclusive ownership: the sender holds a packet until it is
// delivered across a channel boundary, after which the receiver owns it.
// Sending through an output port attached to several channels clones the
// packet per channel so no aliasing persists between downstream paths.
package packet
