package preview

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MediaExtractor reads audio/video headers only; the payload is never
// decoded. Formats it cannot fully parse still yield partial metadata with a
// note.
type MediaExtractor struct{}

func (m *MediaExtractor) ID() string { return "media" }

func (m *MediaExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}

	p := Preview{Category: CategoryMedia, ExtractorID: m.ID()}
	p.SetMeta("size", humanize.IBytes(uint64(info.Size())))

	var parsed bool
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		parsed = m.parseWAV(f, &p)
	case ".mp3":
		parsed = m.parseMP3(f, info.Size(), &p)
	case ".mp4", ".m4v", ".m4a", ".mov":
		parsed = m.parseMP4(f, &p)
	}
	if !parsed && p.Meta("note") == "" {
		p.SetMeta("note", "metadata not determinable for this format")
	}

	p.Text = renderMediaSummary(&p)
	return p, nil
}

// renderMediaSummary turns the metadata mapping into display lines.
func renderMediaSummary(p *Preview) string {
	keys := []string{"codec", "duration", "resolution", "sample_rate", "channels", "bitrate", "title", "artist", "album", "size", "note"}
	var sb strings.Builder
	for _, k := range keys {
		if v := p.Meta(k); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSpace(sb.String())
}

// parseWAV walks RIFF chunks for the format block and the data size.
func (m *MediaExtractor) parseWAV(f *os.File, p *Preview) bool {
	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	if !bytes.Equal(header[0:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return false
	}

	var byteRate uint32
	chunk := make([]byte, 8)
	for i := 0; i < 64; i++ {
		if _, err := io.ReadFull(f, chunk); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			// A real format chunk is 16, 18, or 40 bytes; anything bigger
			// is corruption, not a reason to allocate what the header claims.
			if size < 16 || size > 64 {
				return false
			}
			fmtData := make([]byte, size)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				return false
			}
			channels := binary.LittleEndian.Uint16(fmtData[2:4])
			sampleRate := binary.LittleEndian.Uint32(fmtData[4:8])
			byteRate = binary.LittleEndian.Uint32(fmtData[8:12])
			bits := binary.LittleEndian.Uint16(fmtData[14:16])
			p.SetMeta("codec", "pcm")
			p.SetMeta("channels", strconv.Itoa(int(channels)))
			p.SetMeta("sample_rate", fmt.Sprintf("%d Hz", sampleRate))
			p.SetMeta("bits_per_sample", strconv.Itoa(int(bits)))
		case "data":
			if byteRate > 0 {
				secs := float64(size) / float64(byteRate)
				p.SetMeta("duration", formatDuration(secs))
			}
			return p.Meta("sample_rate") != ""
		default:
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				return false
			}
		}
	}
	return p.Meta("sample_rate") != ""
}

// mp3Bitrates is the MPEG-1 Layer III bitrate table in kbit/s.
var mp3Bitrates = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}

var mp3SampleRates = [4]int{44100, 48000, 32000, 0}

// parseMP3 skips any ID3v2 tag, reads the first frame header for bitrate and
// sample rate, and pulls title/artist from a trailing ID3v1 tag when present.
func (m *MediaExtractor) parseMP3(f *os.File, size int64, p *Preview) bool {
	head := make([]byte, 10)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}

	var audioStart int64
	if bytes.Equal(head[0:3], []byte("ID3")) {
		// Synchsafe 28-bit tag length.
		tagLen := int64(head[6]&0x7f)<<21 | int64(head[7]&0x7f)<<14 | int64(head[8]&0x7f)<<7 | int64(head[9]&0x7f)
		audioStart = 10 + tagLen
	}

	// Hunt for the frame sync within a bounded window after the tag.
	window := make([]byte, 8192)
	if _, err := f.Seek(audioStart, io.SeekStart); err != nil {
		return false
	}
	n, _ := f.Read(window)
	window = window[:n]

	ok := false
	for i := 0; i+3 < len(window); i++ {
		if window[i] != 0xff || window[i+1]&0xe0 != 0xe0 {
			continue
		}
		version := (window[i+1] >> 3) & 0x03
		layer := (window[i+1] >> 1) & 0x03
		if version != 3 || layer != 1 {
			continue // only MPEG-1 Layer III tables are carried
		}
		bitrate := mp3Bitrates[window[i+2]>>4]
		sampleRate := mp3SampleRates[(window[i+2]>>2)&0x03]
		if bitrate == 0 || sampleRate == 0 {
			continue
		}
		p.SetMeta("codec", "mp3")
		p.SetMeta("bitrate", fmt.Sprintf("%d kbps", bitrate))
		p.SetMeta("sample_rate", fmt.Sprintf("%d Hz", sampleRate))
		secs := float64(size-audioStart) / (float64(bitrate) * 1000 / 8)
		p.SetMeta("duration", formatDuration(secs))
		ok = true
		break
	}

	m.readID3v1(f, size, p)
	return ok
}

// readID3v1 reads the fixed 128-byte tag at the end of the file.
func (m *MediaExtractor) readID3v1(f *os.File, size int64, p *Preview) {
	if size < 128 {
		return
	}
	tag := make([]byte, 128)
	if _, err := f.ReadAt(tag, size-128); err != nil {
		return
	}
	if !bytes.Equal(tag[0:3], []byte("TAG")) {
		return
	}
	set := func(key string, raw []byte) {
		if s := strings.TrimRight(string(bytes.TrimRight(raw, "\x00")), " "); s != "" {
			p.SetMeta(key, s)
		}
	}
	set("title", tag[3:33])
	set("artist", tag[33:63])
	set("album", tag[63:93])
}

// parseMP4 walks top-level boxes, seeking past payloads, and digs into moov
// for the movie header (duration) and first track header (resolution).
func (m *MediaExtractor) parseMP4(f *os.File, p *Preview) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	size := info.Size()

	var pos int64
	header := make([]byte, 8)
	found := false
	for pos+8 <= size {
		if _, err := f.ReadAt(header, pos); err != nil {
			break
		}
		boxSize := int64(binary.BigEndian.Uint32(header[0:4]))
		boxType := string(header[4:8])
		if boxSize == 1 {
			// 64-bit size follows the type.
			large := make([]byte, 8)
			if _, err := f.ReadAt(large, pos+8); err != nil {
				break
			}
			boxSize = int64(binary.BigEndian.Uint64(large))
		}
		if boxSize < 8 || pos+boxSize > size {
			break
		}

		switch boxType {
		case "ftyp":
			brand := make([]byte, 4)
			if _, err := f.ReadAt(brand, pos+8); err == nil {
				p.SetMeta("codec", strings.TrimSpace(string(brand)))
			}
		case "moov":
			payload := make([]byte, boxSize-8)
			if _, err := f.ReadAt(payload, pos+8); err == nil {
				found = m.parseMoov(payload, p)
			}
		}
		pos += boxSize
	}
	return found
}

// parseMoov scans an in-memory moov payload for mvhd and tkhd boxes.
func (m *MediaExtractor) parseMoov(moov []byte, p *Preview) bool {
	found := false
	walk := func(data []byte, visit func(boxType string, payload []byte)) {
		pos := 0
		for pos+8 <= len(data) {
			boxSize := int(binary.BigEndian.Uint32(data[pos : pos+4]))
			if boxSize < 8 || pos+boxSize > len(data) {
				return
			}
			visit(string(data[pos+4:pos+8]), data[pos+8:pos+boxSize])
			pos += boxSize
		}
	}

	walk(moov, func(boxType string, payload []byte) {
		switch boxType {
		case "mvhd":
			if len(payload) < 20 {
				return
			}
			var timescale, duration uint64
			if payload[0] == 1 {
				if len(payload) < 32 {
					return
				}
				timescale = uint64(binary.BigEndian.Uint32(payload[20:24]))
				duration = binary.BigEndian.Uint64(payload[24:32])
			} else {
				timescale = uint64(binary.BigEndian.Uint32(payload[12:16]))
				duration = uint64(binary.BigEndian.Uint32(payload[16:20]))
			}
			if timescale > 0 {
				p.SetMeta("duration", formatDuration(float64(duration)/float64(timescale)))
				found = true
			}
		case "trak":
			walk(payload, func(inner string, innerPayload []byte) {
				if inner != "tkhd" || p.Meta("resolution") != "" {
					return
				}
				var wOff int
				switch {
				case len(innerPayload) >= 96 && innerPayload[0] == 1:
					wOff = 88
				case len(innerPayload) >= 84 && innerPayload[0] == 0:
					wOff = 76
				default:
					return
				}
				// 16.16 fixed point.
				w := binary.BigEndian.Uint32(innerPayload[wOff:wOff+4]) >> 16
				h := binary.BigEndian.Uint32(innerPayload[wOff+4:wOff+8]) >> 16
				if w > 0 && h > 0 {
					p.SetMeta("resolution", fmt.Sprintf("%dx%d", w, h))
				}
			})
		}
	})
	return found
}

func formatDuration(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	d := time.Duration(secs * float64(time.Second)).Round(time.Second)
	return d.String()
}
