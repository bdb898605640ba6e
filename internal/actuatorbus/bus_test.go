package actuatorbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedBusClampsAndRecordsBroadcast(t *testing.T) {
	bus := NewSimulatedBus()
	var positions [NumMotors]uint16
	for i := range positions {
		positions[i] = uint16(i * 1000)
	}
	positions[0] = 9000 // out of range, must clamp to MaxRaw

	require.NoError(t, bus.BroadcastGoalPositions(positions))
	last := bus.Last()
	assert.Equal(t, uint16(MaxRaw), last[0])
	assert.Equal(t, uint16(1000), last[1])
}

func TestSimulatedBusClosedRejectsWrites(t *testing.T) {
	bus := NewSimulatedBus()
	require.NoError(t, bus.Close())

	err := bus.BroadcastGoalPositions([NumMotors]uint16{})
	assert.ErrorIs(t, err, ErrClosed)
}

type fakePort struct {
	writes [][]byte
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error) { return 0, nil }
func (p *fakePort) Write(b []byte) (int, error) {
	cp := append([]byte(nil), b...)
	p.writes = append(p.writes, cp)
	return len(b), nil
}
func (p *fakePort) Close() error { p.closed = true; return nil }

func TestDynamixelBusBroadcastWritesOnePacket(t *testing.T) {
	p := &fakePort{}
	bus := &DynamixelBus{port: p}

	var positions [NumMotors]uint16
	for i := range positions {
		positions[i] = 2048
	}
	require.NoError(t, bus.BroadcastGoalPositions(positions))
	require.Len(t, p.writes, 1)

	pkt := p.writes[0]
	assert.Equal(t, header[:], pkt[:4])
	assert.Equal(t, broadcastID, pkt[4])
	assert.Equal(t, instrSyncWrite, pkt[7])
}

func TestDynamixelBusCloseDisablesTorqueAndClosesPort(t *testing.T) {
	p := &fakePort{}
	bus := &DynamixelBus{port: p}

	require.NoError(t, bus.Close())
	assert.True(t, p.closed)
	assert.Len(t, p.writes, NumMotors) // one torque-disable write per motor

	err := bus.BroadcastGoalPositions([NumMotors]uint16{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCRC16Deterministic(t *testing.T) {
	a := crc16([]byte{0x01, 0x02, 0x03})
	b := crc16([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, a, b)
	c := crc16([]byte{0x01, 0x02, 0x04})
	assert.NotEqual(t, a, c)
}

func TestBuildSyncWritePacketCarriesAllMotors(t *testing.T) {
	ids := make([]byte, NumMotors)
	values := make([][]byte, NumMotors)
	for i := range ids {
		ids[i] = byte(i + 1)
		values[i] = le32(uint32(2048))
	}
	pkt := buildSyncWritePacket(ids, addrGoalPosition, lenGoalPosition, values)

	// header(4) + id(1) + len(2) + instr(1) + addr(2) + itemLen(2) +
	// NumMotors*(1 id byte + 4 value bytes) + crc(2)
	expected := 4 + 1 + 2 + 1 + 2 + 2 + NumMotors*5 + 2
	assert.Len(t, pkt, expected)
}
