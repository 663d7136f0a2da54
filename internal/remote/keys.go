package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyKind is the native type of the remote tables' primary keys. Ids are
// strings everywhere else; they are converted only at the call sites here.
type KeyKind string

const (
	KeyAuto KeyKind = "auto" // decimal strings become int64, anything else stays text
	KeyInt  KeyKind = "int"
	KeyText KeyKind = "text"
)

func ParseKeyKind(s string) KeyKind {
	switch KeyKind(strings.ToLower(strings.TrimSpace(s))) {
	case KeyInt:
		return KeyInt
	case KeyText:
		return KeyText
	default:
		return KeyAuto
	}
}

// NativeKey converts a canonical string id into the value sent to the store.
func NativeKey(kind KeyKind, id string) (any, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("empty id")
	}
	switch kind {
	case KeyText:
		return id, nil
	case KeyInt:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id %q is not an integer key", id)
		}
		return n, nil
	default:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			return n, nil
		}
		return id, nil
	}
}
