package tracker

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidRelationship = errors.New("invalid relationship")
)

var (
	ErrUserExists      = fmt.Errorf("%w: username already exists", ErrDuplicateIdentifier)
	ErrDuplicateReview = fmt.Errorf("%w: user has already reviewed this book", ErrDuplicateIdentifier)
	ErrDuplicateShelf  = fmt.Errorf("%w: shelf already exists", ErrDuplicateIdentifier)

	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrBookNotFound    = fmt.Errorf("%w: book not found", ErrNotFound)
	ErrLibraryNotFound = fmt.Errorf("%w: library not found", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("%w: review not found", ErrNotFound)
	ErrNoActiveSession = fmt.Errorf("%w: no active reading session", ErrNotFound)

	ErrNotOwner = fmt.Errorf("%w: only the owner can modify this library", ErrPermissionDenied)

	ErrInvalidRating      = fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	ErrInvalidShelf       = fmt.Errorf("%w: invalid shelf name", ErrInvalidArgument)
	ErrInvalidDirection   = fmt.Errorf("%w: direction must be forward or back", ErrInvalidArgument)
	ErrInvalidPageCount   = fmt.Errorf("%w: count must be at least 1", ErrInvalidArgument)
	ErrInvalidUsername    = fmt.Errorf("%w: username is required", ErrInvalidArgument)
	ErrInvalidLibraryName = fmt.Errorf("%w: library name is required", ErrInvalidArgument)

	ErrNotFriends = fmt.Errorf("%w: can only recommend books to friends", ErrInvalidRelationship)
	ErrSelfLike   = fmt.Errorf("%w: cannot like your own review", ErrInvalidRelationship)
)
