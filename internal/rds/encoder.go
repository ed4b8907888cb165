// Package rds implements the Radio Data System bit stream and its
// 57 kHz subcarrier waveform: group assembly with CRC checkwords and
// offset words, differential coding, and biphase symbol shaping.
//
// The Encoder turns station parameters into the differentially coded
// bit stream; the Modulator renders that stream as a band-limited
// subcarrier ready to be mixed into the composite baseband.
package rds

import "bytes"

// Encoder assembles RDS groups from station parameters and streams
// them out one differentially coded bit at a time.
//
// It is not safe for concurrent use; the synthesis loop that drains it
// is single threaded, and configuration changes arrive through
// QueueUpdate which stages them for the next group boundary.
type Encoder struct {
	pi     uint16
	ps     [psLength]byte
	rt     []byte
	pty    uint8
	tp     bool
	ta     bool
	ms     bool
	stereo bool
	af     []byte

	pending *Update

	// Group rotation state. PS and RT segment counters advance
	// independently of the 0A/2A schedule slot.
	groupSlot int
	psSegment int
	rtSegment int
	afIndex   int
	abFlag    bool

	// Bit streaming state: the current group's payloads, the 26 bit
	// block register being shifted out, and the differential coder
	// memory.
	blocks   [groupBlocks]uint16
	shiftReg uint32
	bitsLeft int
	blockIdx int
	lastBit  int
}

// NewEncoder creates an encoder for the given station. The station is
// validated; in particular every AF entry must be encodable.
func NewEncoder(station Station) (*Encoder, error) {
	if err := station.Validate(); err != nil {
		return nil, err
	}
	af, err := encodeAFList(station.AF)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		pi:     station.PI,
		ps:     normalizePS(station.PS),
		rt:     normalizeRT(station.RT),
		pty:    station.PTY,
		tp:     station.TP,
		ta:     station.TA,
		ms:     station.MS,
		stereo: station.Stereo,
		af:     af,
	}, nil
}

// QueueUpdate validates and stages a station change. The change takes
// effect when the next group starts, never inside a group. Multiple
// updates staged before the boundary merge field by field, the latest
// value winning.
func (e *Encoder) QueueUpdate(u Update) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if e.pending == nil {
		e.pending = &Update{}
	}
	e.pending.merge(&u)
	return nil
}

// NextBit returns the next bit of the differentially coded data
// stream. Each call consumes one bit time (1/1187.5 s on air).
func (e *Encoder) NextBit() int {
	if e.bitsLeft == 0 {
		if e.blockIdx == 0 {
			if e.pending != nil {
				e.applyUpdate(e.pending)
				e.pending = nil
			}
			e.buildGroup()
		}
		payload := e.blocks[e.blockIdx]
		check := checkword(payload) ^ offsetWords[e.blockIdx]
		e.shiftReg = uint32(payload)<<checkwordBits | uint32(check)
		e.bitsLeft = blockBits
		e.blockIdx++
		if e.blockIdx == groupBlocks {
			e.blockIdx = 0
		}
	}

	e.bitsLeft--
	bit := int(e.shiftReg>>uint(e.bitsLeft)) & 1
	out := bit ^ e.lastBit
	e.lastBit = out
	return out
}

// buildGroup fills the block payloads for the next group in the
// rotation: 0A groups carry the service name and AF list, the fifth
// slot carries one radio text segment when text is set.
func (e *Encoder) buildGroup() {
	e.blocks[0] = e.pi

	common := uint16(e.pty) << ptyShift
	if e.tp {
		common |= tpBit
	}

	if e.groupSlot < psGroupsPerCycle || len(e.rt) == 0 {
		b := uint16(groupType0A) | common | uint16(e.psSegment)
		if e.ta {
			b |= taBit
		}
		if e.ms {
			b |= msBit
		}
		if e.stereo && e.psSegment == diStereoSegment {
			b |= diBit
		}
		e.blocks[1] = b
		e.blocks[2] = e.nextAFPair()
		off := e.psSegment * psSegmentLength
		e.blocks[3] = uint16(e.ps[off])<<8 | uint16(e.ps[off+1])

		e.psSegment++
		if e.psSegment == psSegments {
			e.psSegment = 0
		}
	} else {
		b := uint16(groupType2A) | common | uint16(e.rtSegment)
		if e.abFlag {
			b |= abBit
		}
		e.blocks[1] = b
		off := e.rtSegment * rtSegmentLength
		e.blocks[2] = uint16(e.rt[off])<<8 | uint16(e.rt[off+1])
		e.blocks[3] = uint16(e.rt[off+2])<<8 | uint16(e.rt[off+3])

		e.rtSegment++
		if e.rtSegment >= len(e.rt)/rtSegmentLength {
			e.rtSegment = 0
		}
	}

	e.groupSlot++
	if e.groupSlot == groupCycle {
		e.groupSlot = 0
	}
}

// nextAFPair returns the next block C payload for a 0A group: first
// the count header with the first channel code, then packed pairs,
// with a filler code closing an odd tail. An empty list transmits the
// "no AF" header.
func (e *Encoder) nextAFPair() uint16 {
	if len(e.af) == 0 {
		return afCountBase<<8 | afFiller
	}

	var out uint16
	if e.afIndex == 0 {
		out = uint16(afCountBase+len(e.af))<<8 | uint16(e.af[0])
		e.afIndex = 1
	} else {
		out = uint16(e.af[e.afIndex]) << 8
		if e.afIndex+1 < len(e.af) {
			out |= uint16(e.af[e.afIndex+1])
		} else {
			out |= afFiller
		}
		e.afIndex += 2
	}
	if e.afIndex >= len(e.af) {
		e.afIndex = 0
	}
	return out
}

// applyUpdate commits a staged update. Called only at group
// boundaries. A radio text change resets the segment counter and
// toggles the A/B flag exactly once so receivers flush their display.
func (e *Encoder) applyUpdate(u *Update) {
	if u.PI != nil {
		e.pi = *u.PI
	}
	if u.PS != nil {
		e.ps = normalizePS(*u.PS)
	}
	if u.RT != nil {
		rt := normalizeRT(*u.RT)
		if !bytes.Equal(rt, e.rt) {
			e.rt = rt
			e.rtSegment = 0
			e.abFlag = !e.abFlag
		}
	}
	if u.PTY != nil {
		e.pty = *u.PTY
	}
	if u.TP != nil {
		e.tp = *u.TP
	}
	if u.TA != nil {
		e.ta = *u.TA
	}
	if u.MS != nil {
		e.ms = *u.MS
	}
	if u.Stereo != nil {
		e.stereo = *u.Stereo
	}
	if u.AF != nil {
		// Validated when queued.
		af, err := encodeAFList(*u.AF)
		if err == nil {
			e.af = af
			e.afIndex = 0
		}
	}
}

// checkword computes the 10 bit CRC of a block payload, MSB first,
// using the generator polynomial x^10+x^8+x^7+x^5+x^4+x^3+1.
func checkword(payload uint16) uint16 {
	var crc uint16
	for i := payloadBits - 1; i >= 0; i-- {
		bit := (payload >> uint(i)) & 1
		msb := (crc >> (checkwordBits - 1)) & 1
		crc = (crc << 1) & checkwordMask
		if bit^msb != 0 {
			crc ^= crcPoly
		}
	}
	return crc
}
