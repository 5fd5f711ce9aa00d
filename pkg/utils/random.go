package utils

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const trackingKeyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var seededRand *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateTrackingKey generates a random alphanumeric tracking key of fixed length
func GenerateTrackingKey(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = trackingKeyCharset[seededRand.Intn(len(trackingKeyCharset))]
	}
	return string(b)
}

// GenerateSlug generates a UUID string used as an internal link slug
func GenerateSlug() string {
	return uuid.NewString()
}
