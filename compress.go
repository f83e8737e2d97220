package tempora

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Experimental codec bench for integer and timestamp sequences. Nothing
// here is wired into the storage path: series buffers hold points
// uncompressed. The point of the experiment is to measure what a
// general-purpose byte compressor buys on typical monotonic sequences,
// with and without cheap pre-transforms, before committing to a real
// columnar encoding.

// CompressionStats reports the outcome of one compression run.
type CompressionStats struct {
	RawBytes        int
	CompressedBytes int
	// Ratio is CompressedBytes / RawBytes; lower is better. 0 for empty
	// input.
	Ratio float64
}

func newStats(raw, compressed int) CompressionStats {
	st := CompressionStats{RawBytes: raw, CompressedBytes: compressed}
	if raw > 0 {
		st.Ratio = float64(compressed) / float64(raw)
	}
	return st
}

// CompressInt64s renders values as a comma-separated decimal string,
// compresses it with snappy, and returns the base64 payload with stats.
func CompressInt64s(values []int64) (string, CompressionStats) {
	raw := joinInt64s(values)
	compressed := snappy.Encode(nil, raw)
	return base64.StdEncoding.EncodeToString(compressed), newStats(len(raw), len(compressed))
}

// DecompressInt64s reverses CompressInt64s.
func DecompressInt64s(payload string) ([]int64, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return splitInt64s(raw)
}

// CompressInt64sXOR XORs every value against the first element before
// encoding. For sequences clustered around a common magnitude the XORed
// values are shorter in decimal, which helps the byte compressor. The
// input slice is not modified.
func CompressInt64sXOR(values []int64) (string, CompressionStats) {
	xored := make([]int64, len(values))
	copy(xored, values)
	for i := 1; i < len(xored); i++ {
		xored[i] ^= xored[0]
	}
	return CompressInt64s(xored)
}

// DecompressInt64sXOR reverses CompressInt64sXOR.
func DecompressInt64sXOR(payload string) ([]int64, error) {
	values, err := DecompressInt64s(payload)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(values); i++ {
		values[i] ^= values[0]
	}
	return values, nil
}

// CompressTimestamps encodes timestamps as fixed-width Unix nanoseconds and
// compresses them with zstd.
func CompressTimestamps(timestamps []time.Time) ([]byte, CompressionStats, error) {
	raw := make([]byte, 0, binary.MaxVarintLen64+8*len(timestamps))
	raw = binary.AppendUvarint(raw, uint64(len(timestamps)))
	for _, ts := range timestamps {
		raw = binary.LittleEndian.AppendUint64(raw, uint64(ts.UnixNano()))
	}
	compressed, err := zstdCompress(raw)
	if err != nil {
		return nil, CompressionStats{}, err
	}
	return compressed, newStats(len(raw), len(compressed)), nil
}

// DecompressTimestamps reverses CompressTimestamps.
func DecompressTimestamps(data []byte) ([]time.Time, error) {
	raw, err := zstdDecompress(data)
	if err != nil {
		return nil, err
	}
	count, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, errors.New("corrupt timestamp payload")
	}
	raw = raw[n:]
	if uint64(len(raw)) != count*8 {
		return nil, errors.New("corrupt timestamp payload")
	}
	out := make([]time.Time, count)
	for i := range out {
		nanos := int64(binary.LittleEndian.Uint64(raw[i*8:]))
		out[i] = time.Unix(0, nanos)
	}
	return out, nil
}

// CompressTimestampsDelta stores the first timestamp, the first delta, and
// delta-of-deltas as varints, then compresses with zstd. Regularly spaced
// timestamps collapse to near-zero varints, so this typically beats the
// fixed-width layout by a wide margin.
func CompressTimestampsDelta(timestamps []time.Time) ([]byte, CompressionStats, error) {
	raw := make([]byte, 0, binary.MaxVarintLen64*(len(timestamps)+1))
	raw = binary.AppendUvarint(raw, uint64(len(timestamps)))
	var prev, prevDelta int64
	for i, ts := range timestamps {
		nanos := ts.UnixNano()
		switch i {
		case 0:
			raw = binary.AppendVarint(raw, nanos)
		case 1:
			prevDelta = nanos - prev
			raw = binary.AppendVarint(raw, prevDelta)
		default:
			delta := nanos - prev
			raw = binary.AppendVarint(raw, delta-prevDelta)
			prevDelta = delta
		}
		prev = nanos
	}
	compressed, err := zstdCompress(raw)
	if err != nil {
		return nil, CompressionStats{}, err
	}
	return compressed, newStats(len(raw), len(compressed)), nil
}

// DecompressTimestampsDelta reverses CompressTimestampsDelta.
func DecompressTimestampsDelta(data []byte) ([]time.Time, error) {
	raw, err := zstdDecompress(data)
	if err != nil {
		return nil, err
	}
	count, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, errors.New("corrupt timestamp payload")
	}
	raw = raw[n:]

	out := make([]time.Time, 0, count)
	var prev, prevDelta int64
	for i := uint64(0); i < count; i++ {
		v, n := binary.Varint(raw)
		if n <= 0 {
			return nil, errors.New("corrupt timestamp payload")
		}
		raw = raw[n:]
		switch i {
		case 0:
			prev = v
		case 1:
			prevDelta = v
			prev += v
		default:
			prevDelta += v
			prev += prevDelta
		}
		out = append(out, time.Unix(0, prev))
	}
	return out, nil
}

func zstdCompress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

func joinInt64s(values []int64) []byte {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return []byte(strings.Join(parts, ","))
}

func splitInt64s(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	parts := strings.Split(string(raw), ",")
	out := make([]int64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
