package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// Event fields are stored as text: each value in shortest round-trip form,
// separated by single spaces. The form covers every float64, including
// +Inf, -Inf and NaN, which JSON cannot carry.

func appendFields(buf []byte, fields []float64) []byte {
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	}
	return buf
}

func encodeFields(fields []float64) string {
	return string(appendFields(nil, fields))
}

// decodeFields parses the stored form. An empty column decodes to nil.
func decodeFields(s string) ([]float64, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
