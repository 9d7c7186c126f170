package projections

import (
	"context"

	membershipStore "gymdesk/internal/adapters/storage/membership"
	"gymdesk/internal/application/listutil"
	domainLead "gymdesk/internal/domain/lead"
	domainMembership "gymdesk/internal/domain/membership"
)

// ListMembershipsQuery carries the optional category filter.
type ListMembershipsQuery struct {
	Category string
}

// MembershipDeps holds dependencies for the membership projections.
type MembershipDeps struct {
	MembershipStore MembershipStore
}

// QueryListMemberships returns memberships newest first.
// POST: Category matches after canonicalization, so "VIP" finds premium rows
func QueryListMemberships(ctx context.Context, query ListMembershipsQuery, deps MembershipDeps) ([]domainMembership.Membership, error) {
	ms, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{Category: query.Category})
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []domainMembership.Membership{}
	}
	return ms, nil
}

// MembershipHistoryQuery carries history paging. ID and Phone are used by the scoped queries.
type MembershipHistoryQuery struct {
	ID     string
	Phone  string
	Limit  int // clamped by listutil.ClampLimit
	Offset int
}

// QueryMembershipHistory returns the newest history entries across all memberships.
func QueryMembershipHistory(ctx context.Context, query MembershipHistoryQuery, deps MembershipDeps) ([]domainMembership.History, error) {
	return listHistory(ctx, deps, membershipStore.HistoryFilter{
		Limit:  listutil.ClampLimit(query.Limit),
		Offset: query.Offset,
	})
}

// QueryMembershipHistoryForID returns history for one membership, including after it was deleted.
func QueryMembershipHistoryForID(ctx context.Context, query MembershipHistoryQuery, deps MembershipDeps) ([]domainMembership.History, error) {
	return listHistory(ctx, deps, membershipStore.HistoryFilter{
		MembershipIDs: []string{query.ID},
		Limit:         listutil.ClampLimit(query.Limit),
		Offset:        query.Offset,
	})
}

// QueryMembershipHistoryForPhone returns history for every membership tied to a phone.
// A membership is tied when its current phone normalizes to the query, or when any of its
// history entries recorded the phone as a from or to value.
// POST: Empty result for a phone that normalizes to nothing
func QueryMembershipHistoryForPhone(ctx context.Context, query MembershipHistoryQuery, deps MembershipDeps) ([]domainMembership.History, error) {
	phone := domainLead.NormalizePhone(query.Phone)
	if phone == "" {
		return []domainMembership.History{}, nil
	}

	ids := map[string]bool{}
	current, err := deps.MembershipStore.List(ctx, membershipStore.ListFilter{})
	if err != nil {
		return nil, err
	}
	for _, m := range current {
		if domainLead.SamePhone(m.Phone, phone) {
			ids[m.ID] = true
		}
	}
	changes, err := deps.MembershipStore.ListHistory(ctx, membershipStore.HistoryFilter{HasPhoneChange: true})
	if err != nil {
		return nil, err
	}
	for _, h := range changes {
		for _, v := range h.PhoneValues() {
			if domainLead.SamePhone(v, phone) {
				ids[h.MembershipID] = true
			}
		}
	}

	set := make([]string, 0, len(ids))
	for id := range ids {
		set = append(set, id)
	}
	return listHistory(ctx, deps, membershipStore.HistoryFilter{
		MembershipIDs: set,
		Limit:         listutil.ClampLimit(query.Limit),
		Offset:        query.Offset,
	})
}

func listHistory(ctx context.Context, deps MembershipDeps, filter membershipStore.HistoryFilter) ([]domainMembership.History, error) {
	hist, err := deps.MembershipStore.ListHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		hist = []domainMembership.History{}
	}
	return hist, nil
}
