package actuatorbus

import "encoding/binary"

// Protocol v2.0-compatible framing: header, packet id, length, instruction,
// parameters, CRC16. Register map used by this bus:
const (
	instrWrite     byte = 0x03
	instrSyncWrite byte = 0x83

	addrTorqueEnable   uint16 = 0x0040
	lenTorqueEnable    uint16 = 1
	addrGoalPosition   uint16 = 0x0074
	lenGoalPosition    uint16 = 4

	broadcastID byte = 0xFE
)

var header = [4]byte{0xFF, 0xFF, 0xFD, 0x00}

// buildWritePacket assembles a single-motor instruction packet: write `params`
// to address `addr` on `id`.
func buildWritePacket(id byte, addr uint16, params []byte) []byte {
	instrParams := make([]byte, 0, 2+len(params))
	instrParams = appendLE16(instrParams, addr)
	instrParams = append(instrParams, params...)
	return buildInstructionPacket(id, instrWrite, instrParams)
}

// buildSyncWritePacket builds a group-sync-write packet broadcasting one
// goal position (4 bytes LE) per motor id, in the order given by ids.
func buildSyncWritePacket(ids []byte, addr uint16, itemLen uint16, values [][]byte) []byte {
	instrParams := make([]byte, 0, 4+len(ids)*(1+int(itemLen)))
	instrParams = appendLE16(instrParams, addr)
	instrParams = appendLE16(instrParams, itemLen)
	for i, id := range ids {
		instrParams = append(instrParams, id)
		instrParams = append(instrParams, values[i]...)
	}
	return buildInstructionPacket(broadcastID, instrSyncWrite, instrParams)
}

func buildInstructionPacket(id byte, instruction byte, instrParams []byte) []byte {
	length := uint16(len(instrParams) + 3) // instruction + params + 2-byte CRC
	pkt := make([]byte, 0, 4+1+2+1+len(instrParams)+2)
	pkt = append(pkt, header[:]...)
	pkt = append(pkt, id)
	pkt = appendLE16(pkt, length)
	pkt = append(pkt, instruction)
	pkt = append(pkt, instrParams...)
	crc := crc16(pkt)
	pkt = appendLE16(pkt, crc)
	return pkt
}

func appendLE16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

func le32(v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return buf[:]
}

// crc16 computes a CRC-16/ARC style checksum (poly 0x8005, reflected, init
// 0) over the packet bytes preceding the CRC field.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
