package shortcode

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const base = uint64(len(alphabet))

// Encode converts a positive database identifier into its public base62
// representation. Non-positive ids collapse to the "lf" sentinel so a broken
// caller never produces an empty code.
//
// Codes are only ever matched by equality against the stored value, so no
// Decode is provided.
func Encode(id int64) string {
	if id <= 0 {
		return "lf"
	}

	buf := make([]byte, 0, 11)
	n := uint64(id)
	for n > 0 {
		buf = append(buf, alphabet[n%base])
		n /= base
	}

	// Digits were emitted least-significant first.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}
