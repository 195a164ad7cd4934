package driveconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"strings"
)

var (
	errInvalidJSON = errors.New("invalid json")
	errNotObject   = errors.New("top level value is not an object")
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Document is a flat JSON object kept in file order.
type Document struct {
	*OrderedMap[string, Value]
}

func NewDocument() *Document {
	return &Document{OrderedMap: NewOrderedMap[string, Value]()}
}

func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errNotObject
	}

	doc := NewDocument()
	root.ForEach(func(key, value gjson.Result) bool {
		doc.Set(key.String(), valueOf(value))
		return true
	})

	return doc, nil
}

func valueOf(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Value{kind: KindNull, raw: "null"}
	case gjson.True, gjson.False:
		return Value{kind: KindBool, raw: r.Raw}
	case gjson.String:
		return Value{kind: KindString, raw: r.Raw}
	case gjson.Number:
		if strings.ContainsAny(r.Raw, ".eE") {
			return Value{kind: KindFloat, raw: r.Raw}
		}
		return Value{kind: KindInt, raw: r.Raw}
	}
	return Value{kind: KindRaw, raw: r.Raw}
}

// Marshal renders the document indented, keys in order, ending in a newline.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	var err error
	first := true
	d.Each(func(key string, value Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, kerr := json.Marshal(key)
		if kerr != nil {
			err = kerr
			return false
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(value.raw)
		return true
	})
	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}
