// Package identity maintains a user's credential packet chain on the network.
//
// The chain is two pointer packets named from keyword and pin (Mid, and the
// salted Smid) whose payloads hold the encrypted names of two session packets
// (Tmid with the current snapshot, Stmid with the previous one):
//
//	Mid  --> Tmid  (current snapshot)
//	Smid --> Stmid (previous snapshot)
//
// Every save writes a new Tmid under a fresh name, repoints Mid at it, moves
// Smid onto the old Tmid and finally deletes the old Stmid. Failing that last
// delete leaves an orphan that nothing names, so it is logged and ignored.
//
// A Service belongs to one session. All chain mutations hold one mutex.
package identity
