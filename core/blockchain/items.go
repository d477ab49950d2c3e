package blockchain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CorruptedItemMarker replaces item summaries that leaked an internal object
// representation instead of a product list.
const CorruptedItemMarker = "CORRUPTED_ITEM_REMOVED"

var diagnosticArtifacts = []string{
	"<built-in",
	"<bound method",
	"<function",
	"<object",
	" at 0x",
}

type itemsKind int

const (
	itemsText itemsKind = iota
	itemsList
	itemsFields
)

// Items is the item summary handed over by the storefront. The zero value is
// an empty text summary.
type Items struct {
	kind   itemsKind
	text   string
	list   []string
	fields map[string]string
}

func ItemsText(s string) Items {
	return Items{kind: itemsText, text: s}
}

func ItemsList(names ...string) Items {
	return Items{kind: itemsList, list: append([]string(nil), names...)}
}

func ItemsFields(fields map[string]string) Items {
	m := make(map[string]string, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return Items{kind: itemsFields, fields: m}
}

// Render returns the display string stored in a transaction. Lists and field
// maps are encoded as JSON; encoding/json sorts map keys so the result is
// deterministic.
func (it Items) Render() string {
	var s string
	switch it.kind {
	case itemsList:
		list := it.list
		if list == nil {
			list = []string{}
		}
		s = encodeItems(list)
	case itemsFields:
		fields := it.fields
		if fields == nil {
			fields = map[string]string{}
		}
		s = encodeItems(fields)
	default:
		s = it.text
	}
	return SanitizeItems(s)
}

// SanitizeItems returns CorruptedItemMarker when s carries a raw object or
// method reference, s otherwise.
func SanitizeItems(s string) string {
	for _, artifact := range diagnosticArtifacts {
		if strings.Contains(s, artifact) {
			return CorruptedItemMarker
		}
	}
	return s
}

// encodeItems keeps '<' and '>' literal so SanitizeItems still sees them.
func encodeItems(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
