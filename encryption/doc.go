// Package encryption seals page indices into opaque tokens so HTTP page
// endpoints never expose raw offsets.
//
//	codec, err := encryption.NewPageTokenCodec(secret, "/v1/users")
//	token, err := codec.Encode(3)
//	page, err := codec.Decode(token)
//
// Tokens are sealed with ChaCha20-Poly1305 by default; AES-256-GCM is
// available with WithAlgorithm.
package encryption
