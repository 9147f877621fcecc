/*
 * NETCAP - Traffic Analysis Framework
 * Copyright (c) 2017-2020 Philipp Mieden <dreadl0ck [at] protonmail [dot] ch>
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package source

import (
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pkg/errors"
)

// OfflineSource replays a previously captured .pcap file. Unlike
// LiveSource it is finite: NextPacket returns ErrEndOfStream once the
// file is exhausted rather than blocking.
type OfflineSource struct {
	file   *os.File
	reader *pcapgo.Reader
}

// OpenOffline opens path for replay.
func OpenOffline(path string) (*OfflineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open pcap file %q", path)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "parse pcap header %q", path)
	}
	return &OfflineSource{file: f, reader: r}, nil
}

// NextPacket returns the next packet, or ErrEndOfStream at EOF.
func (s *OfflineSource) NextPacket() (Packet, error) {
	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return Packet{}, ErrEndOfStream
		}
		return Packet{}, errors.Wrap(ErrTransient, err.Error())
	}
	return Packet{Data: data, Timestamp: ci.Timestamp, WireLen: ci.Length}, nil
}

// Stats is always zero: an offline file never drops packets at read time.
func (s *OfflineSource) Stats() Stats {
	return Stats{}
}

// LinkType returns the datalink type recorded in the file header.
func (s *OfflineSource) LinkType() layers.LinkType {
	return s.reader.LinkType()
}

// Close releases the underlying file handle.
func (s *OfflineSource) Close() error {
	return s.file.Close()
}

// Exporter writes packets passing the filter engine to a new .pcap file,
// matching the libpcap file format (§6 PCAP export).
type Exporter struct {
	file   *os.File
	writer *pcapgo.Writer
}

// NewExporter creates (or truncates) path and writes the pcap file
// header for linkType/snapLen.
func NewExporter(path string, linkType layers.LinkType, snapLen int) (*Exporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create pcap export %q", path)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(uint32(snapLen), linkType); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write pcap file header")
	}
	return &Exporter{file: f, writer: w}, nil
}

// Write appends one packet. Callers must only pass packets that already
// passed the filter engine (§6: "per-packet writes occur only when a
// packet passes filters").
func (e *Exporter) Write(p Packet) error {
	ci := captureInfo(p)
	return e.writer.WritePacket(ci, p.Data)
}

// Close flushes and closes the export file.
func (e *Exporter) Close() error {
	return e.file.Close()
}
