package user

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// UsernameChecker answers whether a username is already in use.
type UsernameChecker interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// UsernameCheckerFunc adapts a function to UsernameChecker.
type UsernameCheckerFunc func(ctx context.Context, username string) (bool, error)

func (f UsernameCheckerFunc) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return f(ctx, username)
}

// BaseUsername is the lowercase concatenation of first and last name.
func BaseUsername(firstName, lastName string) string {
	return strings.ToLower(firstName + lastName)
}

// AllocateUsername returns base if it is free, otherwise the first free
// base+N for N = 1, 2, ... Every candidate is checked against the store;
// nothing is cached between calls, so callers must serialize allocation with
// the write that claims the name.
func AllocateUsername(ctx context.Context, base string, checker UsernameChecker) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := checker.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}
