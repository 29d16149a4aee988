// Package network models the client's view of the storage network.
//
// A Dispatcher runs store operations on a small fixed pool of workers and
// reports each outcome to a completion callback as a Result carrying an
// integer code. A Cell is the pending/success/failure slot a blocked caller
// waits on; it is signalled exactly once. Client stitches the two together
// into a blocking domain.PacketStore, retrying idempotent reads only.
//
// MemoryStore and MemoryMessenger are in-process collaborators with fault
// injection, used by tests and by single-process setups.
package network
