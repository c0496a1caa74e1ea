package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openmx/mxnet/pkg/mxnet"
)

// formatValue renders a Value's elements as a single comma-separated
// string for table/text display, regardless of datatype.
func formatValue(v *mxnet.Value) string {
	if v == nil {
		return ""
	}
	switch v.Datatype {
	case mxnet.DatatypeString, mxnet.DatatypeRecord, mxnet.DatatypeRecordType,
		mxnet.DatatypeInterface, mxnet.DatatypeRecordField:
		s, err := v.Strings()
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return strings.Join(s, ",")
	case mxnet.DatatypeBool:
		b, err := v.Bool()
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return strconv.FormatBool(b)
	case mxnet.DatatypeULong, mxnet.DatatypeHex, mxnet.DatatypeUint64:
		u, err := v.Uint64s()
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return joinUint64(u)
	case mxnet.DatatypeLong, mxnet.DatatypeInt64, mxnet.DatatypeShort, mxnet.DatatypeChar:
		i, err := v.Int64s()
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return joinInt64(i)
	default:
		f, err := v.Float64s()
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return joinFloat64(f)
	}
}

func joinUint64(u []uint64) string {
	parts := make([]string, len(u))
	for i, x := range u {
		parts[i] = strconv.FormatUint(x, 10)
	}
	return strings.Join(parts, ",")
}

func joinInt64(i []int64) string {
	parts := make([]string, len(i))
	for idx, x := range i {
		parts[idx] = strconv.FormatInt(x, 10)
	}
	return strings.Join(parts, ",")
}

func joinFloat64(f []float64) string {
	parts := make([]string, len(f))
	for i, x := range f {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// parseValue builds a Value from a user-supplied string and datatype
// name for `put`. For string, double, long and ulong a comma splits
// multiple elements into a one-dimensional array; hex and bool take a
// single value and ignore anything after the first comma.
func parseValue(datatype, raw string) (*mxnet.Value, error) {
	elems := strings.Split(raw, ",")

	switch strings.ToLower(datatype) {
	case "", "string":
		if len(elems) == 1 {
			return mxnet.NewString(elems[0]), nil
		}
		return mxnet.NewStringArray([]int{len(elems)}, elems), nil
	case "double", "float":
		f, err := parseFloats(elems)
		if err != nil {
			return nil, err
		}
		if len(f) == 1 {
			return mxnet.NewDouble(f[0]), nil
		}
		return mxnet.NewDoubleArray([]int{len(f)}, f), nil
	case "long", "int":
		i, err := parseInts(elems)
		if err != nil {
			return nil, err
		}
		if len(i) == 1 {
			return mxnet.NewLong(i[0]), nil
		}
		return mxnet.NewLongArray([]int{len(i)}, i), nil
	case "ulong", "uint":
		u, err := parseUints(elems)
		if err != nil {
			return nil, err
		}
		if len(u) == 1 {
			return mxnet.NewULong(u[0]), nil
		}
		return mxnet.NewULongArray([]int{len(u)}, u), nil
	case "hex":
		u, err := strconv.ParseUint(strings.TrimSpace(elems[0]), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hex value %q: %w", elems[0], err)
		}
		return mxnet.NewHex(u), nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(elems[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid bool value %q: %w", elems[0], err)
		}
		return mxnet.NewBool(b), nil
	default:
		return nil, fmt.Errorf("unknown --type %q (want string, double, long, ulong, hex, bool)", datatype)
	}
}

func parseFloats(elems []string) ([]float64, error) {
	out := make([]float64, len(elems))
	for i, e := range elems {
		f, err := strconv.ParseFloat(strings.TrimSpace(e), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", e, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseInts(elems []string) ([]int64, error) {
	out := make([]int64, len(elems))
	for i, e := range elems {
		v, err := strconv.ParseInt(strings.TrimSpace(e), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", e, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseUints(elems []string) ([]uint64, error) {
	out := make([]uint64, len(elems))
	for i, e := range elems {
		v, err := strconv.ParseUint(strings.TrimSpace(e), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer %q: %w", e, err)
		}
		out[i] = v
	}
	return out, nil
}
