package domain

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Identity
	ClientToken string
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(id Identity, clientToken string) *Member {
	return &Member{Identity: id, ClientToken: clientToken}
}
