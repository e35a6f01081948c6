package luaplugin

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// pushValue mirrors a Go value onto the Lua stack. Maps become tables keyed
// by string, slices become 1-based array tables.
func pushValue(l *lua.State, v any) {
	switch value := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(value)
	case int:
		l.PushInteger(value)
	case int64:
		l.PushInteger(int(value))
	case float64:
		l.PushNumber(value)
	case string:
		l.PushString(value)
	case map[string]any:
		l.NewTable()
		for key, item := range value {
			pushValue(l, item)
			l.SetField(-2, key)
		}
	case []any:
		l.NewTable()
		for i, item := range value {
			pushValue(l, item)
			l.RawSetInt(-2, i+1)
		}
	default:
		l.PushString(fmt.Sprintf("%v", value))
	}
}

// toGoValue reads the value at the given stack index back into Go. Tables
// with only sequential integer keys come back as slices, everything else as
// string-keyed maps.
func toGoValue(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return n
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	case lua.TypeTable:
		return tableToGo(l, index)
	}
	return nil
}

func tableToGo(l *lua.State, index int) any {
	index = l.AbsIndex(index)

	asMap := map[string]any{}
	asSlice := []any{}
	sequential := true

	l.PushNil()
	for l.Next(index) {
		value := toGoValue(l, -1)

		switch l.TypeOf(-2) {
		case lua.TypeNumber:
			key, _ := l.ToNumber(-2)
			if sequential && int(key) == len(asSlice)+1 {
				asSlice = append(asSlice, value)
			} else {
				sequential = false
			}
			asMap[fmt.Sprintf("%v", key)] = value
		case lua.TypeString:
			sequential = false
			key, _ := l.ToString(-2)
			asMap[key] = value
		}
		l.Pop(1)
	}

	if sequential && len(asSlice) > 0 {
		return asSlice
	}
	return asMap
}
