package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"
)

// Tier is a loyalty level granting a boost discount once a user has completed
// enough ledger transactions.
type Tier struct {
	Name            string `yaml:"name"`
	MinTransactions int64  `yaml:"min_transactions"`
	DiscountPercent int64  `yaml:"discount_percent"`
}

type BoostPricing struct {
	BaseCost     int64 `yaml:"base_cost"`
	DurationDays int   `yaml:"duration_days"`
}

type RenewalPolicy struct {
	WindowDays    int `yaml:"window_days"`
	ExtensionDays int `yaml:"extension_days"`
}

// Pricing holds the credit economy parameters loaded from pricing.yaml.
type Pricing struct {
	Boost       BoostPricing  `yaml:"boost"`
	Renewal     RenewalPolicy `yaml:"renewal"`
	SignupBonus int64         `yaml:"signup_bonus"`
	Tiers       []Tier        `yaml:"tiers"`
}

func LoadPricing(pricingFile string) (*Pricing, error) {
	var pricingPath string
	if filepath.IsAbs(pricingFile) {
		pricingPath = pricingFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		pricingPath = filepath.Join(wd, pricingFile)
	}

	data, err := os.ReadFile(pricingPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", pricingFile, err)
	}

	var pricing Pricing
	if err := yaml.Unmarshal(data, &pricing); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", pricingFile, err)
	}

	if pricing.Boost.BaseCost <= 0 {
		return nil, fmt.Errorf("boost base_cost must be positive, got %d", pricing.Boost.BaseCost)
	}
	if pricing.Boost.DurationDays <= 0 {
		return nil, fmt.Errorf("boost duration_days must be positive, got %d", pricing.Boost.DurationDays)
	}
	if pricing.Renewal.WindowDays == 0 {
		pricing.Renewal.WindowDays = 7
	}
	if pricing.Renewal.ExtensionDays == 0 {
		pricing.Renewal.ExtensionDays = 30
	}
	if pricing.SignupBonus < 0 {
		return nil, fmt.Errorf("signup_bonus cannot be negative, got %d", pricing.SignupBonus)
	}
	for i, tier := range pricing.Tiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("tier at index %d missing name", i)
		}
		if tier.DiscountPercent < 0 || tier.DiscountPercent > 100 {
			return nil, fmt.Errorf("tier %q discount_percent must be within 0..100, got %d", tier.Name, tier.DiscountPercent)
		}
	}

	// Keep tiers ordered by threshold so TierFor can scan from the top.
	sort.SliceStable(pricing.Tiers, func(i, j int) bool {
		return pricing.Tiers[i].MinTransactions < pricing.Tiers[j].MinTransactions
	})

	return &pricing, nil
}

// TierFor returns the highest tier whose threshold the transaction count
// meets. With no configured tiers every user gets a zero-discount tier.
func (p *Pricing) TierFor(transactionCount int64) Tier {
	current := Tier{Name: "default"}
	for _, tier := range p.Tiers {
		if transactionCount >= tier.MinTransactions {
			current = tier
		}
	}
	return current
}

// EffectiveBoostCost applies a tier discount to the base boost cost.
// Credits are whole units: the result is floored, never negative.
func (p *Pricing) EffectiveBoostCost(discountPercent int64) int64 {
	if discountPercent <= 0 {
		return p.Boost.BaseCost
	}
	if discountPercent >= 100 {
		return 0
	}
	// floor(base - base*pct/100) == base - ceil(base*pct/100)
	discount := (p.Boost.BaseCost*discountPercent + 99) / 100
	cost := p.Boost.BaseCost - discount
	if cost < 0 {
		return 0
	}
	return cost
}
