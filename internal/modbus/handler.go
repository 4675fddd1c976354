package modbus

import (
	"context"
	"errors"

	"github.com/google/uuid"
	mb "github.com/simonvetter/modbus"
	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/audit"
	"github.com/BobDeng1974/DNNCam/internal/logging"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

// Handler adapts a register store to the Modbus server runtime.
type Handler struct {
	store  registers.Port
	logger *zap.Logger
}

// Compile-time assertion that Handler implements mb.RequestHandler
var _ mb.RequestHandler = (*Handler)(nil)

// NewHandler creates a handler serving store.
func NewHandler(store registers.Port, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger.Named("modbus")}
}

// HandleCoils reads or writes coils.
func (h *Handler) HandleCoils(req *mb.CoilsRequest) ([]bool, error) {
	ctx := requestContext(req.ClientAddr)
	addr, qty := int(req.Addr), int(req.Quantity)

	if req.IsWrite {
		values := make([]int, len(req.Args))
		for i, b := range req.Args {
			values[i] = boolToInt(b)
		}
		return nil, h.write(ctx, "coils", addr, values)
	}

	values, err := h.read(ctx, "coils", addr, qty)
	if err != nil {
		return nil, err
	}
	return intsToBools(values), nil
}

// HandleDiscreteInputs reads discrete inputs.
func (h *Handler) HandleDiscreteInputs(req *mb.DiscreteInputsRequest) ([]bool, error) {
	ctx := requestContext(req.ClientAddr)

	values, err := h.read(ctx, "discrete_inputs", int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, err
	}
	return intsToBools(values), nil
}

// HandleHoldingRegisters reads or writes holding registers.
func (h *Handler) HandleHoldingRegisters(req *mb.HoldingRegistersRequest) ([]uint16, error) {
	ctx := requestContext(req.ClientAddr)
	addr, qty := int(req.Addr), int(req.Quantity)

	if req.IsWrite {
		values := make([]int, len(req.Args))
		for i, r := range req.Args {
			values[i] = int(int16(r))
		}
		return nil, h.write(ctx, "holding_registers", addr, values)
	}

	values, err := h.read(ctx, "holding_registers", addr, qty)
	if err != nil {
		return nil, err
	}
	return intsToRegisters(values), nil
}

// HandleInputRegisters reads input registers.
func (h *Handler) HandleInputRegisters(req *mb.InputRegistersRequest) ([]uint16, error) {
	ctx := requestContext(req.ClientAddr)

	values, err := h.read(ctx, "input_registers", int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, err
	}
	return intsToRegisters(values), nil
}

func (h *Handler) read(ctx context.Context, space string, addr, qty int) ([]int, error) {
	if !h.store.Validate(addr, qty) {
		h.reject(ctx, space, addr, qty)
		return nil, mb.ErrIllegalDataAddress
	}
	values, err := h.store.GetValues(ctx, addr, qty)
	if err != nil {
		return nil, h.exception(ctx, space, addr, qty, err)
	}
	return values, nil
}

func (h *Handler) write(ctx context.Context, space string, addr int, values []int) error {
	if !h.store.Validate(addr, len(values)) {
		h.reject(ctx, space, addr, len(values))
		return mb.ErrIllegalDataAddress
	}
	if err := h.store.SetValues(ctx, addr, values); err != nil {
		return h.exception(ctx, space, addr, len(values), err)
	}
	return nil
}

func (h *Handler) reject(ctx context.Context, space string, addr, qty int) {
	logging.WithContext(ctx, h.logger).Debug("request outside register range",
		zap.String("space", space),
		zap.Int(logging.FieldAddress, addr),
		zap.Int("quantity", qty))
}

// exception maps a store error to the Modbus exception returned to the client.
func (h *Handler) exception(ctx context.Context, space string, addr, qty int, err error) error {
	if errors.Is(err, registers.ErrOutOfRange) {
		return mb.ErrIllegalDataAddress
	}
	logging.WithContext(ctx, h.logger).Warn("request failed",
		zap.String("space", space),
		zap.Int(logging.FieldAddress, addr),
		zap.Int("quantity", qty),
		zap.Error(err))
	return mb.ErrServerDeviceFailure
}

func requestContext(clientAddr string) context.Context {
	ctx := audit.WithRequestID(context.Background(), uuid.NewString())
	return audit.WithActor(ctx, clientAddr)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intsToBools(values []int) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v != 0
	}
	return out
}

func intsToRegisters(values []int) []uint16 {
	out := make([]uint16, len(values))
	for i, v := range values {
		out[i] = uint16(v)
	}
	return out
}
