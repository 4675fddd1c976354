// Package registers implements the register-access contract served by the
// Modbus listener and the maintenance API.
//
// A Store validates address ranges against the command table, dispatches each
// offset of a block to its descriptor and keeps backend failures scoped to the
// request that hit them.
package registers
