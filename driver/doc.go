// Package driver owns the physical connection to the embedded SQL engine:
// option resolution, engine-binding acquisition, the connect-time pragma
// sequence, multi-file attachment routing, and the query-runner surface the
// rest of the toolkit executes statements through.
package driver
