package messaging

import (
	"encoding/xml"
	"strings"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// TwiML renders the reply as the provider's XML response document. The body
// is escaped, so patient-controlled text can round-trip safely.
func TwiML(message string) string {
	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		// Marshalling a two-field struct cannot fail; keep the reply flowing.
		return xml.Header + "<Response><Message></Message></Response>"
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(out)
	return b.String()
}
