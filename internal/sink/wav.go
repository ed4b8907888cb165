package sink

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WAV container layout for 16 bit PCM.
const (
	wavHeaderSize      = 44
	wavRiffHeaderSize  = 36 // file size field excludes "RIFF" + size itself
	wavFileSizeOffset  = 4
	wavDataSizeOffset  = 40
	wavPCMSubchunkSize = 16
	wavPCMFormat       = 1

	wavWriterBufferSize = 65536
)

// WAVFile renders the output stream to a 16 bit stereo WAV file
// instead of a playback device. The header is written up front with
// placeholder sizes and patched on Close, and sample data goes through
// a buffered writer without per-block allocations.
type WAVFile struct {
	file     *os.File
	w        *bufio.Writer
	byteBuf  []byte
	dataSize uint32
	closed   bool
}

// NewWAVFile creates the output file and writes its header.
func NewWAVFile(path string, sampleRate int) (*WAVFile, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	s := &WAVFile{
		file: f,
		w:    bufio.NewWriterSize(f, wavWriterBufferSize),
	}
	if err := s.writeHeader(sampleRate); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	return s, nil
}

func (s *WAVFile) writeHeader(sampleRate int) error {
	byteRate := sampleRate * sinkChannels * bytesPerSample
	blockAlign := sinkChannels * bytesPerSample

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0) // patched on Close
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavPCMFormat)
	binary.LittleEndian.PutUint16(header[22:24], sinkChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], 16) // bits per sample

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0) // patched on Close

	_, err := s.w.Write(header)
	return err
}

// Write appends one block of samples to the file.
func (s *WAVFile) Write(block []int16) error {
	if s.closed {
		return ErrSinkClosed
	}

	need := len(block) * bytesPerSample
	if cap(s.byteBuf) < need {
		s.byteBuf = make([]byte, need)
	}
	buf := s.byteBuf[:need]
	encodePCM16(buf, block)

	n, err := s.w.Write(buf)
	s.dataSize += uint32(n)
	if err != nil {
		return fmt.Errorf("file write failed: %w", err)
	}
	return nil
}

// Close flushes buffered data, patches the header sizes and closes the
// file. Safe to call more than once.
func (s *WAVFile) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.w.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}

	sizeBytes := make([]byte, 4)
	if _, err := s.file.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		_ = s.file.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+s.dataSize)
	if _, err := s.file.Write(sizeBytes); err != nil {
		_ = s.file.Close()
		return err
	}

	if _, err := s.file.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		_ = s.file.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, s.dataSize)
	if _, err := s.file.Write(sizeBytes); err != nil {
		_ = s.file.Close()
		return err
	}

	return s.file.Close()
}
