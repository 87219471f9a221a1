package ids

import "github.com/segmentio/ksuid"

// New returns a new K-sortable unique id. Used for users, sessions, lists
// and tasks alike so ids stay opaque strings everywhere.
func New() string {
	return ksuid.New().String()
}
