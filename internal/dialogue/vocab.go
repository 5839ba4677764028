package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinicware/agendabot/internal/textnorm"
)

// restartKeywords unconditionally reset the dialogue from any state.
// Matching is case- and diacritic-insensitive on the whole trimmed message.
var restartKeywords = map[string]bool{
	"menu":      true,
	"reiniciar": true,
	"recomecar": true,
	"remarcar":  true,
	"cancelar":  true,
}

// IsRestart reports whether the message is a restart keyword.
func IsRestart(input string) bool {
	return restartKeywords[textnorm.Fold(input)]
}

var yesTokens = map[string]bool{
	"sim": true, "s": true, "yes": true, "y": true, "ok": true, "claro": true,
}

var noTokens = map[string]bool{
	"nao": true, "n": true, "no": true,
}

// ParseYesNo classifies the message as affirmative or negative. ok is false
// when the message matches neither lexicon.
func ParseYesNo(input string) (yes, ok bool) {
	t := textnorm.Fold(input)
	if yesTokens[t] {
		return true, true
	}
	if noTokens[t] {
		return false, true
	}
	return false, false
}

// knownReasons is the enumerated appointment-reason set. Free text that
// matches none of these is still accepted verbatim.
var knownReasons = []string{
	"Consulta",
	"Vasectomia – avaliação",
	"Litíase/Rim – avaliação",
	"HPB/Próstata – avaliação",
	"Disfunção Erétil – avaliação",
	"Pediátrica – avaliação",
}

// CanonicalReason maps free text onto the enumerated reason set, falling
// back to the raw (trimmed) text when nothing matches. It never rejects.
func CanonicalReason(input string) string {
	trimmed := strings.TrimSpace(input)
	folded := textnorm.Fold(trimmed)
	for _, reason := range knownReasons {
		if folded == textnorm.Fold(reason) {
			return reason
		}
	}
	return trimmed
}

// Billing classification for the ask_insurance step.
type billingChoice int

const (
	billingUnknown billingChoice = iota
	billingParticular
	billingInsurance
)

// classifyBilling fuzzy-matches the insurance answer: "particular" wins over
// plan words when both appear, mirroring the original prompt order.
func classifyBilling(input string) billingChoice {
	t := textnorm.Fold(input)
	if strings.Contains(t, "particular") {
		return billingParticular
	}
	if strings.Contains(t, "convenio") || strings.Contains(t, "plano") {
		return billingInsurance
	}
	return billingUnknown
}

var slotSelectionRE = regexp.MustCompile(`^\d{1,2}$`)

// ParseSlotSelection extracts a 1-based slot choice, valid only against the
// number of slots actually offered.
func ParseSlotSelection(input string, offered int) (int, bool) {
	t := strings.TrimSpace(input)
	if !slotSelectionRE.MatchString(t) {
		return 0, false
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < 1 || n > offered {
		return 0, false
	}
	return n, true
}
