package vecseg

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Dump writes a hex dump of the first maxBytes bytes of path to w, 16 bytes
// per line in groups of four, followed by their printable ASCII. Memory use
// follows the bytes actually dumped, not maxBytes.
func (s *Store) Dump(w io.Writer, path string, maxBytes int) error {
	f, err := s.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return ioErr("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(max(maxBytes, 0))))
	if err != nil {
		return ioErr("read", path, err)
	}
	return HexDump(w, data)
}

// HexDump writes data to w in the format of Store.Dump.
func HexDump(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Offset    00 01 02 03  04 05 06 07  08 09 0A 0B  0C 0D 0E 0F   ASCII\n")

	for off := 0; off < len(data); off += 16 {
		line := data[off:min(off+16, len(data))]
		fmt.Fprintf(bw, "%08X  ", off)
		for j := range 16 {
			if j < len(line) {
				fmt.Fprintf(bw, "%02X ", line[j])
			} else {
				bw.WriteString("   ")
			}
			if j%4 == 3 {
				bw.WriteByte(' ')
			}
		}
		bw.WriteByte(' ')
		for _, b := range line {
			if b >= 0x20 && b < 0x7F {
				bw.WriteByte(b)
			} else {
				bw.WriteByte('.')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
