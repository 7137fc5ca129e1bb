package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ValidateSignature checks the X-Hub-Signature-256 header against the raw
// request body using the app secret. Returns true when the header carries a
// valid "sha256=<hex>" HMAC.
func ValidateSignature(body []byte, header, appSecret string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
