package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes", "running-shoes"},
		{"  Tênis   Ação  ", "tenis-acao"},
		{"T-Shirt (Kids)", "t-shirt-kids"},
		{"Crème Brûlée", "creme-brulee"},
		{"Straße", "strasse"},
		{"Tom & Jerry", "tom-and-jerry"},
		{"---", ""},
		{"", ""},
		{"ÉCOLE 2024!", "ecole-2024"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Running Shoes", "Tênis de Corrida", "A - B", "MiXeD CaSe", "Çà et là", "x__y"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), in)
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Nike", PlainText("<b>Nike</b>"))
	assert.Equal(t, "Shoes > Running", PlainText("Shoes &gt; Running"))
	assert.Equal(t, "Shoes > Running", PlainText("Shoes > Running"))
	assert.Equal(t, "Acme & Co", PlainText("<span>Acme &amp; Co</span><script>x()</script>"))
	assert.Equal(t, "", PlainText(""))
}
