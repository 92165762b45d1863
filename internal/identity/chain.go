package identity

import (
	"context"
	"errors"
)

// Chain tries each verifier in order and accepts the first success. It lets
// locally minted HS256 tokens and Keycloak ID tokens be used side by side.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, raw string) (Token, error) {
	if len(c) == 0 {
		return nil, errors.New("no verifier configured")
	}
	var errs []error
	for _, v := range c {
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
