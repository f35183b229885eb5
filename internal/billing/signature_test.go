// AngelaMos | 2026
// signature_test.go

package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyStripeSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"type":"checkout.session.completed"}`)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sign := func(ts time.Time) string {
		signed := fmt.Sprintf("%d.%s", ts.Unix(), payload)
		return SignHexHMAC([]byte(signed), secret)
	}

	t.Run("valid signature passes", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(now))
		require.NoError(t, VerifyStripeSignature(payload, header, secret, now))
	})

	t.Run("extra v1 candidates still pass", func(t *testing.T) {
		header := fmt.Sprintf(
			"t=%d,v1=deadbeef,v1=%s", now.Unix(), sign(now),
		)
		require.NoError(t, VerifyStripeSignature(payload, header, secret, now))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(now))
		err := VerifyStripeSignature(payload, header, "whsec_other", now)
		assert.Error(t, err)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sign(now))
		err := VerifyStripeSignature(
			[]byte(`{"type":"evil"}`), header, secret, now,
		)
		assert.Error(t, err)
	})

	t.Run("stale timestamp fails", func(t *testing.T) {
		old := now.Add(-10 * time.Minute)
		header := fmt.Sprintf("t=%d,v1=%s", old.Unix(), sign(old))
		err := VerifyStripeSignature(payload, header, secret, now)
		assert.Error(t, err)
	})

	t.Run("missing header fails", func(t *testing.T) {
		assert.Error(t, VerifyStripeSignature(payload, "", secret, now))
	})

	t.Run("header without v1 fails", func(t *testing.T) {
		header := fmt.Sprintf("t=%d", now.Unix())
		assert.Error(t, VerifyStripeSignature(payload, header, secret, now))
	})
}

func TestVerifyHexHMAC(t *testing.T) {
	secret := "tilopay_secret"
	payload := []byte(`{"status":"completed","orderNumber":"u1:monthly:1"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		sig := SignHexHMAC(payload, secret)
		require.NoError(t, VerifyHexHMAC(payload, sig, secret))
	})

	t.Run("uppercase signature passes", func(t *testing.T) {
		sig := SignHexHMAC(payload, secret)
		require.NoError(t, VerifyHexHMAC(payload, upper(sig), secret))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		sig := SignHexHMAC(payload, "other")
		assert.Error(t, VerifyHexHMAC(payload, sig, secret))
	})

	t.Run("empty signature fails", func(t *testing.T) {
		assert.Error(t, VerifyHexHMAC(payload, "", secret))
	})
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			out[i] = c - 32
		}
	}
	return string(out)
}
