// Package api
// Author: momentics <momentics@gmail.com>
//
// Contracts shared by the varstream bridge core and its collaborators.
// Defines the value-descriptor model of the host Variable Space, the
// outbound sample-stream transport contract, and the common error set.
// The bridge core depends only on this package; concrete collaborators
// (varspace, transport/netstream, fake) implement it.
package api
