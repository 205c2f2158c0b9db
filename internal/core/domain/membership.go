package domain

// MembershipClass is the reconciler's verdict for one event participant.
type MembershipClass string

const (
	// MembershipInvited: claimed by the anchor owner but no reciprocal
	// record exists yet — the invite is still outstanding.
	MembershipInvited MembershipClass = "invited"
	// MembershipVerified: the claimed coworker independently owns a record
	// of the same event — mutual corroboration.
	MembershipVerified MembershipClass = "verified"
	// MembershipVerifiable: a sibling record shares the slug but was never
	// claimed by the anchor owner — a candidate the viewer may endorse.
	MembershipVerifiable MembershipClass = "verifiable"
)

// Member is one classified participant in an event membership view.
// Role is populated for verified and verifiable members (taken from the
// sibling record); invited members have no record of their own yet.
type Member struct {
	ID    Identifier      `json:"id"`
	Role  string          `json:"role,omitempty"`
	Class MembershipClass `json:"classification"`
}

// ClassifyMembership merges the anchor owner's claim set with the sibling
// records of the same slug into one classified membership view. Pure and
// order-independent: rerunning over the same inputs yields a set-equal
// result. No entry is classified twice — a sibling consumes its matching
// claim.
func ClassifyMembership(claims []Identifier, siblings []*WorkRecord) []Member {
	remaining := make([]Identifier, len(claims))
	copy(remaining, claims)

	members := make([]Member, 0, len(claims)+len(siblings))
	for _, s := range siblings {
		owner := UserRef(s.UserID)
		if ContainsIdentifier(remaining, owner) {
			members = append(members, Member{ID: owner, Role: s.Role, Class: MembershipVerified})
			remaining = RemoveIdentifier(remaining, owner)
			continue
		}
		members = append(members, Member{ID: owner, Role: s.Role, Class: MembershipVerifiable})
	}

	for _, claim := range remaining {
		members = append(members, Member{ID: claim, Class: MembershipInvited})
	}
	return members
}
