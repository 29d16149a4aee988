// Package main runs the relay: the network store and the share messenger
// behind one HTTP endpoint, persisted to a bolt database.
//
// HTTP API
//
//	PUT /packet/{name}
//	    Store a SignedData. Creates the packet, or replaces it when the
//	    existing one has the same owner key.
//
//	GET /packet/{name}
//	    Return the packet stored under {name}.
//
//	DELETE /packet/{name}
//	    Remove the packet. The body is an OwnershipProof: the owner's
//	    signature over the name.
//
//	GET /packet/{name}/unique
//	    {"unique": true} when nothing is stored under {name}.
//
//	POST /msg/{user}
//	    Enqueue a Message for {user}. If Timestamp is zero, the server fills
//	    it with the current time.
//
//	GET /msg/{user}?limit=N
//	    Return up to N queued messages for {user}, oldest first.
//
//	POST /msg/{user}/ack { "count": N }
//	    Drop the first N queued messages for {user}.
//
// Behaviour
//
//   - Packets and queues survive restarts.
//   - Packet signatures are checked on every write; the relay never holds a
//     private key and cannot forge or replace a user's packets.
//   - The default listen address is :8080.
package main
