// AngelaMos | 2026
// signature.go

package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
)

// stripeSignatureTolerance bounds how stale a signed webhook may be.
const stripeSignatureTolerance = 5 * time.Minute

// VerifyStripeSignature checks the Stripe-Signature header: comma-separated
// t=<unix> and v1=<hex> pairs, where v1 is HMAC-SHA256 over "<t>.<payload>".
// Any matching v1 within the tolerance window passes.
func VerifyStripeSignature(
	payload []byte,
	header, secret string,
	now time.Time,
) error {
	if header == "" {
		return fmt.Errorf("missing signature header: %w", core.ErrInvalidInput)
	}

	var timestamp int64
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf(
					"malformed signature timestamp: %w", core.ErrInvalidInput,
				)
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, value)
		}
	}

	if timestamp == 0 || len(candidates) == 0 {
		return fmt.Errorf("malformed signature header: %w", core.ErrInvalidInput)
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return fmt.Errorf("signature timestamp too old: %w", core.ErrInvalidInput)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}

	return fmt.Errorf("signature mismatch: %w", core.ErrInvalidInput)
}

// VerifyHexHMAC checks a hex-encoded HMAC-SHA256 of the raw payload, the
// scheme Coinbase Commerce and TiloPay both use.
func VerifyHexHMAC(payload []byte, signature, secret string) error {
	if signature == "" {
		return fmt.Errorf("missing signature header: %w", core.ErrInvalidInput)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return fmt.Errorf("signature mismatch: %w", core.ErrInvalidInput)
	}

	return nil
}

// SignHexHMAC produces the signature VerifyHexHMAC expects. Used by tests
// and by outbound TiloPay requests.
func SignHexHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
