package syncer

import "context"

// Attempt runs an optimistic write. apply changes local state and returns
// the function that undoes it; it may be nil for writes that only touch
// local state after confirmation. On success confirm receives the remote
// result. On failure the change is undone and a *RolledBackError returned.
func Attempt[T any](
	ctx context.Context,
	op string,
	apply func() (rollback func()),
	remote func(ctx context.Context) (T, error),
	confirm func(T),
) (T, error) {
	var rollback func()
	if apply != nil {
		rollback = apply()
	}

	result, err := remote(ctx)
	if err != nil {
		if rollback != nil {
			rollback()
		}
		var zero T
		return zero, &RolledBackError{Op: op, Err: err}
	}
	if confirm != nil {
		confirm(result)
	}
	return result, nil
}
