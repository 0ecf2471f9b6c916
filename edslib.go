// Package edslib binds a schema-described binary object model to a
// dynamic object runtime. A Database consumes a read-only schema service
// and lazily builds runtime types; Instances view arbitrary in-memory
// buffers as strongly-typed structured values without copying, and the
// conversion engine translates between packed binary memory and generic
// dynamic values in both directions.
//
// The engine runs under a single-threaded cooperative convention:
// callers serialize all access externally. Reference counts and caches
// use no internal locking; a concurrent host must add its own mutual
// exclusion.
package edslib
