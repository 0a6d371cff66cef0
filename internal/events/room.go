package events

import "fmt"

// DirectRoom derives the room name for a 1:1 chat. It is
// order-independent: both participants compute the same name.
func DirectRoom(userA, userB uint) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("room_%d_%d", userA, userB)
}

// GroupRoom derives the room name for a group chat, keyed by group id.
func GroupRoom(groupID uint) string {
	return fmt.Sprintf("group_%d", groupID)
}
