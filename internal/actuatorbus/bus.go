// Package actuatorbus drives the twelve serial-bus servos: port lifecycle,
// torque control, and the group-sync-write broadcast of goal positions.
package actuatorbus

import (
	"fmt"
	"sync"
)

// NumMotors is the fixed actuator count; motor ids are 1..NumMotors and
// broadcasts always carry exactly this many positions, in order.
const NumMotors = 12

const (
	MinRaw = 0
	MaxRaw = 4095
)

// Bus is the narrow interface the gait engine drives. A single owner
// issues calls in program order; the bus itself is not meant to be shared
// across goroutines (§5: the bus is single-owner, no internal locking is
// required by callers, but Bus implementations serialize internally as
// cheap insurance for misuse from tests).
type Bus interface {
	EnableTorque(ids []int) error
	DisableTorque(ids []int) error
	// BroadcastGoalPositions writes exactly NumMotors raw positions
	// (clamped to [MinRaw,MaxRaw]) in one bus transaction.
	BroadcastGoalPositions(positions [NumMotors]uint16) error
	Close() error
}

type port interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Close() error
}

// DynamixelBus is the real hardware-facing Bus implementation.
type DynamixelBus struct {
	mu     sync.Mutex
	port   port
	closed bool
}

// Open opens the serial device and sets its baud rate. It neither enables
// torque nor writes any keyframe; the caller does both after Open returns.
// A failure here is fatal at startup per spec.md §7.
func Open(device string, baud uint32) (*DynamixelBus, error) {
	p, err := openPort(device, baud)
	if err != nil {
		return nil, err
	}
	return &DynamixelBus{port: p}, nil
}

func (b *DynamixelBus) EnableTorque(ids []int) error {
	return b.writeTorque(ids, 1)
}

func (b *DynamixelBus) DisableTorque(ids []int) error {
	return b.writeTorque(ids, 0)
}

func (b *DynamixelBus) writeTorque(ids []int, enable byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, id := range ids {
		pkt := buildWritePacket(byte(id), addrTorqueEnable, []byte{enable})
		if _, err := b.port.Write(pkt); err != nil {
			return fmt.Errorf("actuatorbus: torque write to motor %d: %w", id, err)
		}
	}
	return nil
}

// BroadcastGoalPositions sends one group-sync-write packet for all
// NumMotors positions. The write either completes as a single transaction
// or returns an error; callers (the gait engine) log and continue with the
// next tick — open-loop, no retry.
func (b *DynamixelBus) BroadcastGoalPositions(positions [NumMotors]uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	ids := make([]byte, NumMotors)
	values := make([][]byte, NumMotors)
	for i := 0; i < NumMotors; i++ {
		ids[i] = byte(i + 1)
		p := clamp(positions[i])
		values[i] = le32(uint32(p))
	}
	pkt := buildSyncWritePacket(ids, addrGoalPosition, lenGoalPosition, values)
	if _, err := b.port.Write(pkt); err != nil {
		return fmt.Errorf("actuatorbus: broadcast: %w", err)
	}
	return nil
}

func clamp(v uint16) uint16 {
	if v > MaxRaw {
		return MaxRaw
	}
	return v
}

// Close disables torque on all motors, then closes the port. Every step is
// attempted even if an earlier one fails, so the port is never left open.
func (b *DynamixelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	ids := make([]int, NumMotors)
	for i := range ids {
		ids[i] = i + 1
	}
	var torqueErr error
	for _, id := range ids {
		pkt := buildWritePacket(byte(id), addrTorqueEnable, []byte{0})
		if _, err := b.port.Write(pkt); err != nil && torqueErr == nil {
			torqueErr = err
		}
	}
	closeErr := b.port.Close()
	if closeErr != nil {
		return fmt.Errorf("actuatorbus: close: %w", closeErr)
	}
	return torqueErr
}

// SimulatedBus is a software-only Bus used when no hardware is attached
// (config.AllowSimulatedBus) and in tests. It records the last broadcast
// for assertions; it does not log.
type SimulatedBus struct {
	mu     sync.Mutex
	last   [NumMotors]uint16
	closed bool
}

// NewSimulatedBus returns a Bus that never touches hardware.
func NewSimulatedBus() *SimulatedBus {
	return &SimulatedBus{}
}

func (b *SimulatedBus) EnableTorque(ids []int) error  { return nil }
func (b *SimulatedBus) DisableTorque(ids []int) error { return nil }

func (b *SimulatedBus) BroadcastGoalPositions(positions [NumMotors]uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for i, p := range positions {
		b.last[i] = clamp(p)
	}
	return nil
}

// Last returns the most recent broadcast, for test assertions.
func (b *SimulatedBus) Last() [NumMotors]uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *SimulatedBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
