// Package backend implements the remote command client for the lens
// controller.
//
// Every command is a named XML-RPC call with at most one integer argument.
// The client opens a fresh connection per call, bounds it with a timeout,
// normalizes the controller's -1 "invalid" sentinel to 0 and classifies
// failures into UNAVAILABLE, TIMEOUT and FAULT codes.
package backend
