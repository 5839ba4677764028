package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// EventID derives a deterministic event id from the patient identifier and
// the slot boundaries. Re-delivered webhook calls for the same patient/slot
// hash to the same id, so retrying a booking can never create a duplicate
// calendar entry. The hex output stays within Google's event id alphabet.
func EventID(patientID string, start, end time.Time) string {
	key := fmt.Sprintf("%s|%s|%s", patientID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:24]
}
