package blockchain

import (
	"errors"
	"testing"
)

func TestItemsRender(t *testing.T) {
	cases := []struct {
		name  string
		items Items
		want  string
	}{
		{"text", ItemsText("Laptop x1, Mouse x2"), "Laptop x1, Mouse x2"},
		{"zero value", Items{}, ""},
		{"list", ItemsList("Laptop", "Mouse"), `["Laptop","Mouse"]`},
		{"empty list", ItemsList(), `[]`},
		{"fields sorted", ItemsFields(map[string]string{"mouse": "2", "laptop": "1"}), `{"laptop":"1","mouse":"2"}`},
		{"no html escaping", ItemsList("Cable <1m>", "R&D kit"), `["Cable <1m>","R&D kit"]`},
		{"built-in text", ItemsText("<built-in method items of dict object at 0x7f3a>"), CorruptedItemMarker},
		{"bound method in list", ItemsList("<bound method Cart.items of <Cart>>"), CorruptedItemMarker},
		{"function in fields", ItemsFields(map[string]string{"x": "<function foo>"}), CorruptedItemMarker},
		{"object repr", ItemsText("<object object>"), CorruptedItemMarker},
		{"address", ItemsText("Cart at 0xdeadbeef"), CorruptedItemMarker},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.items.Render(); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestItemsListIsCopied(t *testing.T) {
	names := []string{"a", "b"}
	it := ItemsList(names...)
	names[0] = "<object>"
	if got := it.Render(); got != `["a","b"]` {
		t.Fatalf("Items shares the caller's slice: %q", got)
	}
}

func TestParseTotal(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"25000", 25000, false},
		{" 15000 ", 15000, false},
		{"15000.0", 15000, false},
		{"0", 0, false},
		{"1e3", 1000, false},
		{"12.5", 0, true},
		{"-1", 0, true},
		{"-3.0", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"9223372036854775808", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTotal(tc.in)
			if tc.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v (value %d)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTotal(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseTotal(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
