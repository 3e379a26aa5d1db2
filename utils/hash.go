package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint returns a one-way content fingerprint for a message. Only the
// digest is ever persisted; raw message text never reaches the database.
func Fingerprint(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
