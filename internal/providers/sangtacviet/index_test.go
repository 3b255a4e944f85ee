package sangtacviet

import (
	"reflect"
	"testing"

	"github.com/brogergvhs/noveld/internal/providers"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []providers.Chapter
	}{
		{
			name: "sample payload",
			data: "1-/-1001-/- Chương 1: Khởi đầu-//-1-/-1002-/- Chương 2: Gặp gỡ-//-unvip-/-1003-/- Chương 3: VIP-//-",
			want: []providers.Chapter{
				{ID: "1001", Title: "Chương 1: Khởi đầu", Ordinal: 1},
				{ID: "1002", Title: "Chương 2: Gặp gỡ", Ordinal: 2},
				{ID: "1003", Title: "Chương 3: VIP", Ordinal: 3, Restricted: true},
			},
		},
		{
			name: "non numeric ids are skipped and do not consume ordinals",
			data: "1-/-vol1-/- Quyển 1-//-1-/-11-/- A-//-1-/- -/- blank-//-1-/-12a-/- B-//-1-/-13-/- C",
			want: []providers.Chapter{
				{ID: "11", Title: "A", Ordinal: 1},
				{ID: "13", Title: "C", Ordinal: 2},
			},
		},
		{
			name: "short entries are skipped",
			data: "1-/-20-//-1-/-21-/- ok-//-  -//-",
			want: []providers.Chapter{
				{ID: "21", Title: "ok", Ordinal: 1},
			},
		},
		{
			name: "marker anywhere in the entry",
			data: "1-/-30-/- title-/-unvip",
			want: []providers.Chapter{
				{ID: "30", Title: "title", Ordinal: 1, Restricted: true},
			},
		},
		{
			name: "single character separators are not enough",
			data: "1/40/a//1/41/b",
			want: nil,
		},
		{name: "empty", data: "", want: nil},
		{name: "html error page", data: "<html><body>502 Bad Gateway</body></html>", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIndex(tt.data)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseIndex() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseIndexOrdinalsAreContiguous(t *testing.T) {
	data := ""
	valid := 0
	for i := range 50 {
		if i%7 == 3 {
			data += "1-/-x" + "-/- noise-//-"
			continue
		}
		data += "1-/-" + string(rune('1'+i%9)) + "00-/- t-//-"
		valid++
	}

	got := ParseIndex(data)
	if len(got) != valid {
		t.Fatalf("len = %d, want %d", len(got), valid)
	}
	for i, ch := range got {
		if ch.Ordinal != i+1 {
			t.Fatalf("ordinal[%d] = %d", i, ch.Ordinal)
		}
	}
}
