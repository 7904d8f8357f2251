package cli

import (
	"encoding/json"
	"strconv"

	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
)

// parseValue turns a command-line literal into a typed value. The "json"
// tag accepts the tagged wire form and is the way to enter arrays and
// objects from the shell.
func parseValue(tag, raw string) (*model.Value, error) {
	switch tag {
	case "str":
		return model.String(raw), nil
	case "i32":
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not an i32", raw)
		}
		return model.I32(int32(n)), nil
	case "u32":
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not a u32", raw)
		}
		return model.U32(uint32(n)), nil
	case "i64":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not an i64", raw)
		}
		return model.I64(n), nil
	case "u64":
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not a u64", raw)
		}
		return model.U64(n), nil
	case "f64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not an f64", raw)
		}
		return model.F64(f), nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("%q is not a bool", raw)
		}
		return model.Bool(b), nil
	case "null":
		return model.Null(), nil
	case "json":
		var v model.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, errclass.ErrInvalidConfig.WithMessagef("unknown type %q, want str, i32, u32, i64, u64, f64, bool, null, or json", tag)
	}
}
