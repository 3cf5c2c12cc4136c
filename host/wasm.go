package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/tmplkit/internal/abi"
)

func (e *Executor) registerHostFunctions(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(e.config.hostModuleName)
	logger := e.config.logger

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, packed uint64) {
			ptr, length, ok := abi.UnpackPtrLen(packed)
			if !ok {
				return
			}
			mem := m.Memory()
			if mem == nil {
				return
			}
			payload, ok := mem.Read(ptr, length)
			if !ok {
				return
			}

			var logMsg struct {
				Level   string `json:"level"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(payload, &logMsg); err != nil {
				logger.InfoContext(ctx, "module log (raw)", "module", m.Name(), "payload", string(payload))
				return
			}
			logger.Log(ctx, parseLevel(logMsg.Level), logMsg.Message, "module", m.Name())
		}).
		Export("log_message")

	_, err := builder.Instantiate(ctx)
	return err
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (m *Module) callRaw(ctx context.Context, name string, input []byte) (uint64, error) {
	f := m.module.ExportedFunction(name)
	if f == nil {
		return 0, fmt.Errorf("export %q not found", name)
	}

	var results []uint64
	var err error

	if len(input) == 0 {
		results, err = f.Call(ctx)
	} else {
		if m.module.Memory() == nil {
			return 0, fmt.Errorf("guest does not export memory")
		}
		allocate := m.module.ExportedFunction("allocate")
		if allocate == nil {
			return 0, fmt.Errorf("guest does not export 'allocate'")
		}
		resAlloc, errAlloc := allocate.Call(ctx, uint64(len(input)))
		if errAlloc != nil {
			return 0, fmt.Errorf("failed to allocate in guest: %w", errAlloc)
		}
		if len(resAlloc) == 0 {
			return 0, fmt.Errorf("allocate returned no results")
		}
		ptr := uint32(resAlloc[0])
		if ptr == 0 {
			return 0, fmt.Errorf("guest could not allocate %d bytes", len(input))
		}
		if !m.module.Memory().Write(ptr, input) {
			return 0, fmt.Errorf("failed to write input to guest memory")
		}
		results, err = f.Call(ctx, uint64(ptr), uint64(len(input)))
	}

	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

func (m *Module) readPacked(packed uint64) ([]byte, error) {
	ptr, length, ok := abi.UnpackPtrLen(packed)
	if !ok {
		return nil, fmt.Errorf("null response from module")
	}
	mem := m.module.Memory()
	if mem == nil {
		return nil, fmt.Errorf("guest does not export memory")
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from memory")
	}
	// Guest memory may be reused by the next call.
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}
