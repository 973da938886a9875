// Package compositor defines the protocol vocabulary shared by the
// presentation core and the Wayland binding: object identifiers, the
// layer enum, the closed set of events a compositor can deliver, and the
// interfaces through which requests are issued.
//
// Nothing in this package talks to a compositor. The concrete
// implementation lives in package wayland, and tests substitute fakes.
package compositor
