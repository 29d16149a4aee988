// Package relay carries the network store and the share messenger over HTTP.
//
// HTTP is the client side: it implements domain.RelayClient against a relay
// base URL. NewHandler is the server side: it exposes any domain.RelayClient
// (in practice a bolt-backed store) under the same routes.
//
// Routes:
//
//	PUT    /packet/{name}         store a SignedData
//	GET    /packet/{name}         fetch a SignedData
//	DELETE /packet/{name}         delete, body is an OwnershipProof
//	GET    /packet/{name}/unique  {"unique": bool}
//	POST   /msg/{id}              queue a Message for id
//	GET    /msg/{id}?limit=n      peek at id's queue
//	POST   /msg/{id}/ack          {"count": n} drops the first n
//
// Store outcomes travel as status codes: 404 not found, 409 conflict,
// 403 not owner, 422 invalid signature, 400 malformed request.
package relay
