package user

import "time"

// User is a registered account, keyed externally by its Supabase UID.
// Rows are provisioned lazily the first time a verified token is seen.
type User struct {
	Id          int
	SupabaseUid string
	Email       string
	CreatedAt   time.Time
}
