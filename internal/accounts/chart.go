package accounts

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

//go:embed default_chart.yaml
var defaultChartYAML []byte

// nestedAccount is one node of the sub_accounts tree form.
type nestedAccount struct {
	Code        string            `yaml:"code"`
	Name        string            `yaml:"name"`
	Type        model.AccountType `yaml:"account_type,omitempty"`
	Description string            `yaml:"description"`
	SubAccounts []nestedAccount   `yaml:"sub_accounts,omitempty"`
}

// groupOrder fixes the block order of the flat grouped form.
var groupOrder = []model.AccountType{
	model.AccountTypeAsset,
	model.AccountTypeLiability,
	model.AccountTypeEquity,
	model.AccountTypeIncome,
	model.AccountTypeExpense,
}

// ReadChart parses a chart of accounts in either YAML form: a list of
// accounts nested with sub_accounts, or a mapping from account type to a
// flat list of accounts with optional parent_code. The result is validated.
func ReadChart(r io.Reader) (model.ChartOfAccounts, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.ChartOfAccounts{}, fmt.Errorf("reading chart: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.ChartOfAccounts{}, fmt.Errorf("parsing chart: %w", err)
	}
	if len(doc.Content) == 0 {
		return model.NewChartOfAccounts(nil)
	}

	var accts []model.Account
	switch root := doc.Content[0]; root.Kind {
	case yaml.SequenceNode:
		var nodes []nestedAccount
		if err := root.Decode(&nodes); err != nil {
			return model.ChartOfAccounts{}, fmt.Errorf("parsing nested chart: %w", err)
		}
		for _, n := range nodes {
			accts = flatten(accts, n, "", "")
		}
	case yaml.MappingNode:
		var groups map[model.AccountType][]model.Account
		if err := root.Decode(&groups); err != nil {
			return model.ChartOfAccounts{}, fmt.Errorf("parsing grouped chart: %w", err)
		}
		for t := range groups {
			if !t.Valid() {
				return model.ChartOfAccounts{}, fmt.Errorf("parsing grouped chart: unknown account type %q", t)
			}
		}
		for _, t := range groupOrder {
			for _, a := range groups[t] {
				a.Type = t
				accts = append(accts, a)
			}
		}
	default:
		return model.ChartOfAccounts{}, fmt.Errorf("parsing chart: expected a list or a mapping")
	}
	return model.NewChartOfAccounts(accts)
}

// flatten walks the tree depth first; children inherit the parent's type
// when their own is absent.
func flatten(out []model.Account, n nestedAccount, parentCode string, parentType model.AccountType) []model.Account {
	t := n.Type
	if t == "" {
		t = parentType
	}
	out = append(out, model.Account{
		Code:        n.Code,
		Name:        n.Name,
		Type:        t,
		ParentCode:  parentCode,
		Description: n.Description,
	})
	for _, child := range n.SubAccounts {
		out = flatten(out, child, n.Code, t)
	}
	return out
}

// WriteChart writes the nested form. account_type appears on roots only.
func WriteChart(w io.Writer, chart model.ChartOfAccounts) error {
	roots := chart.Roots()
	nodes := make([]nestedAccount, 0, len(roots))
	for _, a := range roots {
		nodes = append(nodes, nest(chart, a, true))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	return enc.Close()
}

func nest(chart model.ChartOfAccounts, a model.Account, root bool) nestedAccount {
	n := nestedAccount{Code: a.Code, Name: a.Name, Description: a.Description}
	if root {
		n.Type = a.Type
	}
	for _, child := range chart.Children(a.Code) {
		n.SubAccounts = append(n.SubAccounts, nest(chart, child, false))
	}
	return n
}

// Load reads a chart of accounts YAML file.
func Load(path string) (model.ChartOfAccounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ChartOfAccounts{}, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	chart, err := ReadChart(f)
	if err != nil {
		return model.ChartOfAccounts{}, fmt.Errorf("reading chart of accounts %s: %w", path, err)
	}
	return chart, nil
}

// Save writes the chart to path in the nested form.
func Save(path string, chart model.ChartOfAccounts) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating chart dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteChart(&buf, chart); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

// DefaultChart returns the built-in chart for an Australian sole trader.
func DefaultChart() model.ChartOfAccounts {
	chart, err := ReadChart(bytes.NewReader(defaultChartYAML))
	if err != nil {
		panic(fmt.Sprintf("default chart of accounts is invalid: %v", err))
	}
	return chart
}
