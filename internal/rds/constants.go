package rds

// Timing constants. The 57 kHz subcarrier runs phase-locked to the
// 19 kHz pilot (3rd harmonic) and carries exactly 48 cycles per data bit.
const (
	// BitRate is the RDS data rate in bits per second.
	BitRate = 1187.5

	// BaseSampleRate is the lowest rate at which both the 57 kHz
	// subcarrier period and the bit period are whole sample counts.
	// Synthesis rates must be positive integer multiples of it.
	BaseSampleRate = 228000

	// CarrierFrequency is the RDS subcarrier center frequency in Hz.
	CarrierFrequency = 57000

	// samplesPerBitBase is BaseSampleRate / BitRate.
	samplesPerBitBase = 192
)

// Block and group framing.
const (
	groupBlocks   = 4  // blocks per group
	payloadBits   = 16 // information bits per block
	checkwordBits = 10 // CRC bits per block
	blockBits     = payloadBits + checkwordBits

	// crcPoly is the generator polynomial
	// x^10 + x^8 + x^7 + x^5 + x^4 + x^3 + 1 with the x^10 term implied.
	crcPoly       = 0x1B9
	checkwordMask = (1 << checkwordBits) - 1
)

// offsetWords are XORed into the checkword of blocks A through D so
// receivers can locate block boundaries within a group.
var offsetWords = [groupBlocks]uint16{0x0FC, 0x198, 0x168, 0x1B4}

// Block B layout. Bits 15..12 carry the group type, bit 11 the version
// flag (0 for A groups), bit 10 Traffic Program, bits 9..5 the Program
// Type. The low five bits are group specific.
const (
	groupType0A = 0x0000
	groupType2A = 0x2000

	tpBit    = 0x0400
	ptyShift = 5

	// Group 0A specific
	taBit = 0x0010
	msBit = 0x0008
	diBit = 0x0004

	// Group 2A specific
	abBit = 0x0010
)

// Group schedule: four 0A groups (one full PS name) followed by one 2A
// group. The 2A slot falls back to 0A while no Radio Text is set.
const (
	groupCycle       = 5
	psGroupsPerCycle = 4
)

// Program Service and Radio Text sizing.
const (
	psLength        = 8
	psSegmentLength = 2
	psSegments      = psLength / psSegmentLength

	rtMaxLength     = 64
	rtSegmentLength = 4
	rtTerminator    = '\r'

	// diStereoSegment is the PS segment whose DI bit announces a
	// stereo transmission (DI bit d0 travels in segment 3).
	diStereoSegment = 3

	maxPTY = 31
)

// Alternative Frequency coding. Channel numbers 1..204 cover 87.6 MHz
// to 107.9 MHz in 100 kHz steps; 224 means "no AF", 225..249 announce
// how many AF codes follow, and 205 fills an unused pair slot.
const (
	afCodeMin   = 1
	afCodeMax   = 204
	afCodeBase  = 875 // tenths of MHz below the first channel
	afCountBase = 224
	afFiller    = 205
	maxAFCount  = 25

	// AFMinMHz and AFMaxMHz bound the encodable frequency range.
	AFMinMHz = 87.6
	AFMaxMHz = 107.9
)
