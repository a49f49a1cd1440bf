package ports

import "context"

// CredentialSource supplies the bearer credential attached to backend calls.
// ok is false when no usable credential exists; callers then go anonymous.
type CredentialSource interface {
	Token(ctx context.Context) (token string, ok bool)
}
