package encryption

import (
	"encoding/binary"
	"fmt"

	apperrors "github.com/kbukum/lazyseq/errors"
)

const tokenKind = "page"

// PageTokenCodec turns page indices into opaque tokens bound to a scope,
// usually the endpoint path, so a token minted for one resource cannot be
// replayed against another.
type PageTokenCodec struct {
	sealer *Sealer
	scope  []byte
}

// NewPageTokenCodec creates a codec sealing tokens with secret.
func NewPageTokenCodec(secret, scope string, opts ...Option) (*PageTokenCodec, error) {
	if secret == "" {
		return nil, apperrors.InvalidArgument("token secret", "must not be empty")
	}
	sealer, err := NewSealer(secret, opts...)
	if err != nil {
		return nil, err
	}
	return &PageTokenCodec{sealer: sealer, scope: []byte(scope)}, nil
}

// Encode seals page into a token.
func (c *PageTokenCodec) Encode(page int) (string, error) {
	if page < 0 {
		return "", apperrors.InvalidArgument("page", "must not be negative")
	}
	buf := binary.AppendUvarint(nil, uint64(page))
	return c.sealer.Seal(buf, c.scope)
}

// Decode opens token and returns its page index. Tampered, foreign or
// malformed tokens yield INVALID_TOKEN.
func (c *PageTokenCodec) Decode(token string) (int, error) {
	plain, err := c.sealer.Open(token, c.scope)
	if err != nil {
		return 0, apperrors.InvalidToken(tokenKind).WithCause(err)
	}
	page, n := binary.Uvarint(plain)
	if n <= 0 || n != len(plain) || page > uint64(maxInt) {
		return 0, apperrors.InvalidToken(tokenKind).WithCause(fmt.Errorf("malformed payload"))
	}
	return int(page), nil
}

const maxInt = int(^uint(0) >> 1)
