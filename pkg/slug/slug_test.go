package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Garki Electronics", "garki-electronics"},
		{"yoruba tones", "Mama Ọ̀jọ́ Kitchen", "mama-ojo-kitchen"},
		{"under dots and ampersand", "Àṣẹ Fabrics & Co.", "ase-fabrics-and-co"},
		{"hausa hooked letters", "Ɗan Ƙasa Leather", "dan-kasa-leather"},
		{"naira sign", "₦5k Deals", "naira-5k-deals"},
		{"repeated separators", "Wuse  Market!!", "wuse-market"},
		{"surrounding space", "  Jabi Lake Mall  ", "jabi-lake-mall"},
		{"digits", "Shop 24/7", "shop-24-7"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input))
		})
	}
}
