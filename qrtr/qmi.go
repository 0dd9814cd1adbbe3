package qrtr

import "encoding/binary"

// QMI message and TLV framing for the PDS (Position Determination
// Service, QMI service 0x10) control plane, straight out of
// driver_pds.c's qmi_header/qmi_tlv structs. Both are packed,
// little-endian, and have no padding, so they're read and written by
// hand rather than through encoding/binary.Read/Write on a struct.

const (
	qmiRequest       = 0
	qmiIndication    = 4
	qmiHeaderSize    = 7 // type(1) + txn(2) + msg(2) + len(2)
	qmiTLVHeaderSize = 3 // key(1) + len(2)
)

// PDS service/message identifiers.
const (
	pdsServiceID = 0x10
	pdsVersion   = 0x2

	msgRegEvents = 0x21
	msgStart     = 0x22
	msgStop      = 0x23
	msgEventNMEA = 0x26

	tlvEventMask = 1
	tlvSessionID = 1
	tlvNMEA      = 1

	eventMaskNMEA = 4
)

// qmiHeader is {type uint8; txn uint16; msg uint16; len uint16} packed.
type qmiHeader struct {
	typ uint8
	txn uint16
	msg uint16
	len uint16
}

func (h qmiHeader) marshal() []byte {
	buf := make([]byte, qmiHeaderSize)
	buf[0] = h.typ
	binary.LittleEndian.PutUint16(buf[1:3], h.txn)
	binary.LittleEndian.PutUint16(buf[3:5], h.msg)
	binary.LittleEndian.PutUint16(buf[5:7], h.len)
	return buf
}

func parseQMIHeader(buf []byte) (qmiHeader, bool) {
	if len(buf) < qmiHeaderSize {
		return qmiHeader{}, false
	}
	return qmiHeader{
		typ: buf[0],
		txn: binary.LittleEndian.Uint16(buf[1:3]),
		msg: binary.LittleEndian.Uint16(buf[3:5]),
		len: binary.LittleEndian.Uint16(buf[5:7]),
	}, true
}

// appendTLV appends a {key uint8; len uint16; value} TLV to buf.
func appendTLV(buf []byte, key uint8, value []byte) []byte {
	buf = append(buf, key)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(value)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, value...)
	return buf
}

// txnCounter is a per-Conn monotonic transaction id (the C driver's
// static int txn_id, made an explicit per-connection field instead of a
// process-global — §9's registry-not-global theme applies here too).
type txnCounter struct{ n uint16 }

func (t *txnCounter) next() uint16 {
	v := t.n
	t.n++
	return v
}

// buildStop renders a STOP request: header + one session-id TLV.
func buildStop(txn uint16) []byte {
	body := appendTLV(nil, tlvSessionID, []byte{1})
	hdr := qmiHeader{typ: qmiRequest, txn: txn, msg: msgStop, len: uint16(len(body))}
	return append(hdr.marshal(), body...)
}

// buildRegEvents renders a REG_EVENTS request: header + an 8-byte
// little-endian event-mask TLV (QMI_EVENT_MASK_NMEA).
func buildRegEvents(txn uint16) []byte {
	var mask [8]byte
	binary.LittleEndian.PutUint64(mask[:], eventMaskNMEA)
	body := appendTLV(nil, tlvEventMask, mask[:])
	hdr := qmiHeader{typ: qmiRequest, txn: txn, msg: msgRegEvents, len: uint16(len(body))}
	return append(hdr.marshal(), body...)
}

// buildStart renders a START request: header + one session-id TLV.
func buildStart(txn uint16) []byte {
	body := appendTLV(nil, tlvSessionID, []byte{1})
	hdr := qmiHeader{typ: qmiRequest, txn: txn, msg: msgStart, len: uint16(len(body))}
	return append(hdr.marshal(), body...)
}

// walkNMEATLV scans the TLVs following a QMI_LOC_EVENT_NMEA indication
// for the NMEA-payload TLV, returning its value.
//
// This reproduces a known bug in the original driver: the advance to the
// next TLV is offset += tlv.len, omitting the 3-byte TLV header itself,
// so the walk desyncs after the first non-matching TLV. The bounds check
// above it is computed correctly (with the header counted), so the walk
// never reads out of bounds — it just usually stops at the first TLV.
// Kept intentionally faithful rather than "fixed" (see DESIGN.md).
func walkNMEATLV(payload []byte) (value []byte, ok bool) {
	offset := 0
	for offset < len(payload) {
		if offset+qmiTLVHeaderSize > len(payload) {
			break
		}
		key := payload[offset]
		tlvLen := int(binary.LittleEndian.Uint16(payload[offset+1 : offset+3]))
		if offset+qmiTLVHeaderSize+tlvLen > len(payload) {
			break
		}
		value := payload[offset+qmiTLVHeaderSize : offset+qmiTLVHeaderSize+tlvLen]
		if key == tlvNMEA {
			return value, true
		}
		offset += tlvLen // faithful to the original's under-advance
	}
	return nil, false
}
