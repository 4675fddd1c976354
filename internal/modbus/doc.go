// Package modbus serves the register store over Modbus TCP.
//
// Coils, discrete inputs, holding registers and input registers all resolve
// through the same store with zero-based addressing. Registers are written as
// signed 16-bit values and read back truncated to 16 bits. Bits map nonzero
// to true.
package modbus
