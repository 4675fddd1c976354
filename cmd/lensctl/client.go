package main

import (
	"fmt"

	mb "github.com/simonvetter/modbus"

	"github.com/BobDeng1974/DNNCam/internal/lens"
)

// registerClient is the part of the Modbus client lensctl uses.
type registerClient interface {
	ReadRegisters(addr uint16, quantity uint16, regType mb.RegType) ([]uint16, error)
	WriteRegister(addr uint16, value uint16) error
	Close() error
}

func dial(opts *options) (registerClient, error) {
	c, err := mb.NewClient(&mb.ClientConfiguration{URL: opts.url, Timeout: opts.timeout})
	if err != nil {
		return nil, fmt.Errorf("modbus client: %w", err)
	}
	if err := c.SetUnitId(opts.unit); err != nil {
		return nil, fmt.Errorf("modbus unit id: %w", err)
	}
	if err := c.Open(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.url, err)
	}
	return c, nil
}

// row is one line of output: a register, its value or the read error.
type row struct {
	Address uint16
	Name    string
	Value   int16
	Err     error
}

// readStatus reads every named register one at a time so a failing
// register does not hide the others.
func readStatus(c registerClient) []row {
	bindings := lens.ReferenceBindings()
	rows := make([]row, 0, len(bindings))
	for _, b := range bindings {
		addr := uint16(b.Address)
		r := row{Address: addr, Name: b.Name}
		regs, err := c.ReadRegisters(addr, 1, mb.HOLDING_REGISTER)
		if err != nil {
			r.Err = err
		} else {
			r.Value = int16(regs[0])
		}
		rows = append(rows, r)
	}
	return rows
}

func readBlock(c registerClient, addr, count uint16) ([]row, error) {
	regs, err := c.ReadRegisters(addr, count, mb.HOLDING_REGISTER)
	if err != nil {
		return nil, fmt.Errorf("read %d register(s) at %d: %w", count, addr, err)
	}
	rows := make([]row, len(regs))
	for i, v := range regs {
		a := addr + uint16(i)
		rows[i] = row{Address: a, Name: registerName(a), Value: int16(v)}
	}
	return rows, nil
}

func registerName(addr uint16) string {
	for _, b := range lens.ReferenceBindings() {
		if b.Address == int(addr) {
			return b.Name
		}
	}
	return fmt.Sprintf("Register %d", addr)
}
