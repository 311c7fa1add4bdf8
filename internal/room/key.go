// ABOUTME: Room key derivation for the public room and private pairs
// ABOUTME: Private keys sort the two numeric user ids so both sides derive the same key

package room

import "fmt"

// PublicKey is the routing key for the single public chat room.
const PublicKey = "chat:public"

// PrivateKey derives the routing key for the private room between two
// users. The ids are sorted first, so PrivateKey(a, b) == PrivateKey(b, a).
func PrivateKey(userA, userB int64) string {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("chat:private:%d:%d", lo, hi)
}
