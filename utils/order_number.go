package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateOrderNumber returns ORD-<base36 millis>-<5 random base36>, upper-cased.
func GenerateOrderNumber(now time.Time) string {
	var suffix [5]byte
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(now.UnixNano() % 36)
		}
		suffix[i] = base36[n.Int64()]
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper("ORD-" + stamp + "-" + string(suffix[:]))
}
