package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Dayzcorp/seep-global/internal/domain"

	"gopkg.in/yaml.v3"
)

// DefaultPlanName is applied to merchants whose plan is unknown
const DefaultPlanName = "free"

// DefaultPlans are used when no plans file is configured
var DefaultPlans = []domain.Plan{
	{Name: "free", TokenLimit: 20000},
	{Name: "starter", TokenLimit: 200000},
	{Name: "pro", TokenLimit: 1000000},
	{Name: "enterprise", TokenLimit: domain.UnlimitedTokens},
}

// Plans resolves plan names to quotas
type Plans struct {
	byName map[string]domain.Plan
}

type plansFile struct {
	Plans []domain.Plan `yaml:"plans"`
}

// NewPlans indexes plans by lowercase name
func NewPlans(plans []domain.Plan) *Plans {
	p := &Plans{byName: make(map[string]domain.Plan, len(plans))}
	for _, plan := range plans {
		plan.Name = strings.ToLower(strings.TrimSpace(plan.Name))
		p.byName[plan.Name] = plan
	}
	return p
}

// LoadPlans reads a plans YAML file, or returns the defaults when path is empty
func LoadPlans(path string) (*Plans, error) {
	if path == "" {
		return NewPlans(DefaultPlans), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}
	var f plansFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plans file %s defines no plans", path)
	}
	for _, plan := range f.Plans {
		if plan.TokenLimit < domain.UnlimitedTokens {
			return nil, fmt.Errorf("plan %q has invalid token_limit %d", plan.Name, plan.TokenLimit)
		}
	}
	return NewPlans(f.Plans), nil
}

// Resolve returns the named plan, falling back to the free plan
func (p *Plans) Resolve(planName string) domain.Plan {
	if plan, ok := p.byName[strings.ToLower(strings.TrimSpace(planName))]; ok {
		return plan
	}
	if plan, ok := p.byName[DefaultPlanName]; ok {
		return plan
	}
	return domain.Plan{Name: DefaultPlanName, TokenLimit: DefaultPlans[0].TokenLimit}
}
