package accounts

import (
	"context"
	"sort"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// memRepo is an in-memory chart. itemCounts simulates posted transaction items per ledger.
type memRepo struct {
	nextID     int64
	parents    map[int64]ParentLedgerGroup
	groups     map[int64]LedgerGroup
	ledgers    map[int64]Ledger
	spending   map[int64]SpendingType
	itemCounts map[int64]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		parents:    map[int64]ParentLedgerGroup{},
		groups:     map[int64]LedgerGroup{},
		ledgers:    map[int64]Ledger{},
		spending:   map[int64]SpendingType{},
		itemCounts: map[int64]int{},
	}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := m.clone()
	if err := fn(ctx, m); err != nil {
		*m = *snapshot
		return err
	}
	return nil
}

func (m *memRepo) clone() *memRepo {
	c := newMemRepo()
	c.nextID = m.nextID
	for k, v := range m.parents {
		c.parents[k] = v
	}
	for k, v := range m.groups {
		c.groups[k] = v
	}
	for k, v := range m.ledgers {
		c.ledgers[k] = v
	}
	for k, v := range m.spending {
		c.spending[k] = v
	}
	for k, v := range m.itemCounts {
		c.itemCounts[k] = v
	}
	return c
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) ListParentGroups(context.Context) ([]ParentLedgerGroup, error) {
	out := make([]ParentLedgerGroup, 0, len(m.parents))
	for _, g := range m.parents {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memRepo) GetParentGroup(_ context.Context, id int64) (ParentLedgerGroup, error) {
	g, ok := m.parents[id]
	if !ok {
		return ParentLedgerGroup{}, shared.NotFound("parent ledger group", id)
	}
	return g, nil
}

func (m *memRepo) FindParentGroupByName(_ context.Context, name string) (ParentLedgerGroup, error) {
	for _, g := range m.parents {
		if g.Name == name {
			return g, nil
		}
	}
	return ParentLedgerGroup{}, shared.ErrNotFound
}

func (m *memRepo) InsertParentGroup(_ context.Context, g ParentLedgerGroup) (ParentLedgerGroup, error) {
	g.ID = m.id()
	g.IsActive = true
	g.CreatedAt = time.Unix(0, 0).UTC()
	m.parents[g.ID] = g
	return g, nil
}

func (m *memRepo) UpdateParentGroup(_ context.Context, g ParentLedgerGroup) error {
	if _, ok := m.parents[g.ID]; !ok {
		return shared.NotFound("parent ledger group", g.ID)
	}
	m.parents[g.ID] = g
	return nil
}

func (m *memRepo) DeleteParentGroup(_ context.Context, id int64) error {
	delete(m.parents, id)
	return nil
}

func (m *memRepo) CountLedgerGroups(_ context.Context, parentID int64) (int, error) {
	n := 0
	for _, g := range m.groups {
		if g.ParentLedgerGroupID == parentID {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListLedgerGroups(_ context.Context, parentID *int64) ([]LedgerGroup, error) {
	var out []LedgerGroup
	for _, g := range m.groups {
		if parentID == nil || g.ParentLedgerGroupID == *parentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetLedgerGroup(_ context.Context, id int64) (LedgerGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return LedgerGroup{}, shared.NotFound("ledger group", id)
	}
	return g, nil
}

func (m *memRepo) FindLedgerGroupByName(_ context.Context, name string) (LedgerGroup, error) {
	for _, g := range m.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return LedgerGroup{}, shared.ErrNotFound
}

func (m *memRepo) InsertLedgerGroup(_ context.Context, g LedgerGroup) (LedgerGroup, error) {
	g.ID = m.id()
	g.IsActive = true
	m.groups[g.ID] = g
	return g, nil
}

func (m *memRepo) UpdateLedgerGroup(_ context.Context, g LedgerGroup) error {
	m.groups[g.ID] = g
	return nil
}

func (m *memRepo) DeleteLedgerGroup(_ context.Context, id int64) error {
	delete(m.groups, id)
	return nil
}

func (m *memRepo) CountLedgers(_ context.Context, groupID int64) (int, error) {
	n := 0
	for _, l := range m.ledgers {
		if l.LedgerGroupID == groupID {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CountGroupItems(_ context.Context, groupID int64) (int, error) {
	n := 0
	for id, l := range m.ledgers {
		if l.LedgerGroupID == groupID {
			n += m.itemCounts[id]
		}
	}
	return n, nil
}

func (m *memRepo) detail(l Ledger) LedgerDetail {
	g := m.groups[l.LedgerGroupID]
	p := m.parents[g.ParentLedgerGroupID]
	d := LedgerDetail{
		Ledger:          l,
		LedgerGroupName: g.Name,
		Category:        g.Category,
		ParentGroupID:   p.ID,
		ParentGroupName: p.Name,
		ParentSortOrder: p.SortOrder,
		Nature:          p.Nature,
	}
	if l.SpendingTypeID != nil {
		d.SpendingTypeName = m.spending[*l.SpendingTypeID].Name
	}
	return d
}

func (m *memRepo) ListLedgers(_ context.Context, filter LedgerFilter) ([]LedgerDetail, error) {
	var out []LedgerDetail
	for _, l := range m.ledgers {
		d := m.detail(l)
		if filter.GroupID != nil && l.LedgerGroupID != *filter.GroupID {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if !filter.IncludeInactive && !l.IsActive {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetLedger(_ context.Context, id int64) (LedgerDetail, error) {
	l, ok := m.ledgers[id]
	if !ok {
		return LedgerDetail{}, shared.NotFound("ledger", id)
	}
	return m.detail(l), nil
}

func (m *memRepo) FindLedgerByName(_ context.Context, name string) (Ledger, error) {
	for _, l := range m.ledgers {
		if l.Name == name {
			return l, nil
		}
	}
	return Ledger{}, shared.ErrNotFound
}

func (m *memRepo) InsertLedger(_ context.Context, l Ledger) (Ledger, error) {
	l.ID = m.id()
	l.IsActive = true
	m.ledgers[l.ID] = l
	return l, nil
}

func (m *memRepo) UpdateLedger(_ context.Context, l Ledger) error {
	m.ledgers[l.ID] = l
	return nil
}

func (m *memRepo) SetLedgerActive(_ context.Context, id int64, active bool) error {
	l, ok := m.ledgers[id]
	if !ok {
		return shared.NotFound("ledger", id)
	}
	l.IsActive = active
	m.ledgers[id] = l
	return nil
}

func (m *memRepo) DeleteLedger(_ context.Context, id int64) error {
	delete(m.ledgers, id)
	return nil
}

func (m *memRepo) CountLedgerItems(_ context.Context, ledgerID int64) (int, error) {
	return m.itemCounts[ledgerID], nil
}

func (m *memRepo) ListSpendingTypes(context.Context) ([]SpendingType, error) {
	var out []SpendingType
	for _, st := range m.spending {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepo) GetSpendingType(_ context.Context, id int64) (SpendingType, error) {
	st, ok := m.spending[id]
	if !ok {
		return SpendingType{}, shared.NotFound("spending type", id)
	}
	return st, nil
}

func (m *memRepo) FindSpendingTypeByName(_ context.Context, name string) (SpendingType, error) {
	for _, st := range m.spending {
		if st.Name == name {
			return st, nil
		}
	}
	return SpendingType{}, shared.ErrNotFound
}

func (m *memRepo) InsertSpendingType(_ context.Context, st SpendingType) (SpendingType, error) {
	st.ID = m.id()
	st.IsActive = true
	m.spending[st.ID] = st
	return st, nil
}
