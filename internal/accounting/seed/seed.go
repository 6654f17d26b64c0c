// Package seed loads the default chart of accounts.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

//go:embed chart.yaml
var defaultChart []byte

// ParentGroup is a parent ledger group entry in the seed file.
type ParentGroup struct {
	Name      string        `yaml:"name"`
	SortOrder int           `yaml:"sort_order"`
	Nature    shared.Nature `yaml:"nature,omitempty"`
}

// LedgerGroup is a ledger group entry; Parent names its parent group.
type LedgerGroup struct {
	Name     string                     `yaml:"name"`
	Parent   string                     `yaml:"parent"`
	Category shared.LedgerGroupCategory `yaml:"category"`
}

// Chart is the seed file layout.
type Chart struct {
	ParentGroups []ParentGroup `yaml:"parent_groups"`
	LedgerGroups []LedgerGroup `yaml:"ledger_groups"`
}

// ChartWriter is the subset of the chart of accounts service the seeder uses.
type ChartWriter interface {
	ListParentGroups(ctx context.Context) ([]accounts.ParentLedgerGroup, error)
	CreateParentGroup(ctx context.Context, in accounts.ParentGroupInput) (accounts.ParentLedgerGroup, error)
	ListLedgerGroups(ctx context.Context, parentID *int64) ([]accounts.LedgerGroup, error)
	CreateLedgerGroup(ctx context.Context, in accounts.LedgerGroupInput) (accounts.LedgerGroup, error)
}

// Result counts what a seed run created.
type Result struct {
	ParentGroupsCreated int
	LedgerGroupsCreated int
}

// DefaultChart returns the embedded default chart.
func DefaultChart() (Chart, error) {
	return LoadChart(bytes.NewReader(defaultChart))
}

// LoadChart decodes a seed file, rejecting unknown keys.
func LoadChart(r io.Reader) (Chart, error) {
	var chart Chart
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&chart); err != nil {
		return Chart{}, fmt.Errorf("seed: decode chart: %w", err)
	}
	parents := make(map[string]bool, len(chart.ParentGroups))
	for _, p := range chart.ParentGroups {
		parents[shared.NormalizeName(p.Name)] = true
	}
	for _, g := range chart.LedgerGroups {
		if !parents[shared.NormalizeName(g.Parent)] {
			return Chart{}, fmt.Errorf("seed: ledger group %q references unknown parent %q", g.Name, g.Parent)
		}
	}
	return chart, nil
}

// Apply creates every group of chart that does not exist yet, matching by
// normalised name. Running it twice creates nothing the second time.
func Apply(ctx context.Context, w ChartWriter, chart Chart) (Result, error) {
	var result Result
	existing, err := w.ListParentGroups(ctx)
	if err != nil {
		return result, err
	}
	parentIDs := make(map[string]int64, len(existing))
	for _, p := range existing {
		parentIDs[shared.NormalizeName(p.Name)] = p.ID
	}
	for _, p := range chart.ParentGroups {
		key := shared.NormalizeName(p.Name)
		if _, ok := parentIDs[key]; ok {
			continue
		}
		sortOrder := p.SortOrder
		created, err := w.CreateParentGroup(ctx, accounts.ParentGroupInput{Name: p.Name, SortOrder: &sortOrder, Nature: p.Nature})
		if err != nil {
			return result, fmt.Errorf("seed: parent group %q: %w", p.Name, err)
		}
		parentIDs[key] = created.ID
		result.ParentGroupsCreated++
	}

	groups, err := w.ListLedgerGroups(ctx, nil)
	if err != nil {
		return result, err
	}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		seen[shared.NormalizeName(g.Name)] = true
	}
	for _, g := range chart.LedgerGroups {
		if seen[shared.NormalizeName(g.Name)] {
			continue
		}
		created, err := w.CreateLedgerGroup(ctx, accounts.LedgerGroupInput{
			Name:                g.Name,
			ParentLedgerGroupID: parentIDs[shared.NormalizeName(g.Parent)],
			Category:            g.Category,
		})
		if err != nil {
			return result, fmt.Errorf("seed: ledger group %q: %w", g.Name, err)
		}
		seen[shared.NormalizeName(created.Name)] = true
		result.LedgerGroupsCreated++
	}
	return result, nil
}
