package apperrors

import "errors"

// Sentinel domain errors. Services return these; handlers compare with
// errors.Is and map the code to an HTTP status.
var (
	ErrSelfFriendRequest     = Validation("cannot send a friend request to yourself")
	ErrFriendRequestExists   = Conflict("a pending friend request already exists between these users")
	ErrAlreadyFriends        = Conflict("users are already friends")
	ErrFriendRequestNotFound = NotFound("no pending friend request found")
	ErrNotRequestOwner       = PermissionDenied("friend request was sent by another user")
	ErrNotFriends            = NotFound("users are not friends")
	ErrUserNotFound          = NotFound("user not found")

	ErrEmptyMessageContent = Validation("message content cannot be empty")
	ErrMessageTarget       = Validation("a message needs exactly one of receiverId or groupId")

	ErrEmptyGroupName       = Validation("group name cannot be empty")
	ErrGroupNotFound        = NotFound("group not found")
	ErrNotGroupMember       = PermissionDenied("user is not a member of this group")
	ErrDuplicateGroupMember = Conflict("user is already a member of this group")
	ErrGroupMemberNotFound  = NotFound("group member not found")
)

// CodeOf extracts the Code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
