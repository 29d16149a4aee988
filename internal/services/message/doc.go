// Package message sends and receives operation-tagged share messages.
//
// A message is an ordered list of string fields whose first field is the
// operation tag. Receive hands queued messages to a handler in order and
// acknowledges only the ones that were handled, so a failing handler leaves
// the rest queued for the next call.
package message
