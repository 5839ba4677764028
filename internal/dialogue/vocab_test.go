package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRestart(t *testing.T) {
	for _, in := range []string{"menu", "MENU", " Menu ", "reiniciar", "recomeçar", "recomecar", "remarcar", "cancelar"} {
		assert.True(t, IsRestart(in), "expected restart for %q", in)
	}
	for _, in := range []string{"menus", "quero remarcar", "oi", ""} {
		assert.False(t, IsRestart(in), "expected no restart for %q", in)
	}
}

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		in      string
		yes, ok bool
	}{
		{"sim", true, true},
		{"SIM", true, true},
		{"s", true, true},
		{"claro", true, true},
		{"ok", true, true},
		{"não", false, true},
		{"nao", false, true},
		{"n", false, true},
		{"talvez", false, false},
		{"sim, por favor", false, false},
	}
	for _, tc := range cases {
		yes, ok := ParseYesNo(tc.in)
		assert.Equal(t, tc.ok, ok, "ok for %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.yes, yes, "yes for %q", tc.in)
		}
	}
}

func TestClassifyBilling(t *testing.T) {
	assert.Equal(t, billingParticular, classifyBilling("Particular"))
	assert.Equal(t, billingParticular, classifyBilling("vai ser particular mesmo"))
	assert.Equal(t, billingInsurance, classifyBilling("Convênio"))
	assert.Equal(t, billingInsurance, classifyBilling("convenio"))
	assert.Equal(t, billingInsurance, classifyBilling("tenho plano de saúde"))
	assert.Equal(t, billingUnknown, classifyBilling("sei lá"))

	// "particular" wins when the answer mentions both.
	assert.Equal(t, billingParticular, classifyBilling("particular, não tenho plano"))
}

func TestCanonicalReason(t *testing.T) {
	assert.Equal(t, "Consulta", CanonicalReason("consulta"))
	assert.Equal(t, "HPB/Próstata – avaliação", CanonicalReason("hpb/prostata – avaliacao"))
	assert.Equal(t, "Vasectomia – avaliação", CanonicalReason("VASECTOMIA – AVALIAÇÃO"))
	assert.Equal(t, "dor nas costas", CanonicalReason("  dor nas costas  "))
}

func TestParseSlotSelection(t *testing.T) {
	n, ok := ParseSlotSelection("2", 3)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = ParseSlotSelection("0", 3)
	assert.False(t, ok)
	_, ok = ParseSlotSelection("4", 3)
	assert.False(t, ok)
	_, ok = ParseSlotSelection("abc", 3)
	assert.False(t, ok)
	_, ok = ParseSlotSelection("1e", 3)
	assert.False(t, ok)

	n, ok = ParseSlotSelection(" 1 ", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}
