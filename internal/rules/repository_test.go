package rules

import (
	"errors"
	"testing"

	"github.com/panverse/rules-agent/internal/models"
)

func TestLoad_Valid(t *testing.T) {
	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, category := range models.Categories() {
		def, err := repo.Get(category)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", category, err)
			continue
		}
		if def.Category != category {
			t.Errorf("Get(%s) returned definition for %s", category, def.Category)
		}
	}

	enc, _ := repo.Get(models.CategoryEncounter)
	if enc.Balance == nil {
		t.Fatal("encounter definition should carry balance tables")
	}
	if enc.Balance.CRXP["1/4"] != 50 {
		t.Errorf("CR 1/4 XP = %d, want 50", enc.Balance.CRXP["1/4"])
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load("testdata/does-not-exist")
	if err == nil {
		t.Fatal("expected error for missing rules directory")
	}
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestLoad_GappedXPBudget(t *testing.T) {
	_, err := Load("testdata/gapped")
	if err == nil {
		t.Fatal("expected error for gapped xp_budget table")
	}
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestLoad_InvertedRange(t *testing.T) {
	_, err := Load("testdata/badrange")
	if err == nil {
		t.Fatal("expected error for min > max field range")
	}
}

func TestGet_UnsupportedCategory(t *testing.T) {
	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = repo.Get(models.RuleCategory("spaceship"))
	if err == nil {
		t.Fatal("expected error for unsupported content type")
	}
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Errorf("expected ErrUnsupportedContentType, got %v", err)
	}
}

func TestNewRepository_RejectsBadBalanceValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(b *BalanceTables)
	}{
		{"zero xp budget", func(b *BalanceTables) { b.XPBudget[5] = 0 }},
		{"negative xp budget", func(b *BalanceTables) { b.XPBudget[1] = -25 }},
		{"decreasing xp budget", func(b *BalanceTables) { b.XPBudget[10] = b.XPBudget[9] - 1 }},
		{"zero size multiplier", func(b *BalanceTables) { b.SizeMultipliers[4] = 0 }},
		{"negative size multiplier", func(b *BalanceTables) { b.SizeMultipliers[8] = -1.5 }},
		{"zero fractional cr xp", func(b *BalanceTables) { b.CRXP["1/2"] = 0 }},
		{"negative cr xp", func(b *BalanceTables) { b.CRXP["12"] = -100 }},
	}

	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defs := make([]*Definition, 0, len(models.Categories()))
			for _, category := range models.Categories() {
				def, _ := repo.Get(category)
				if category == models.CategoryEncounter {
					broken := *def
					broken.Balance = cloneBalanceTables(def.Balance)
					tc.mutate(broken.Balance)
					def = &broken
				}
				defs = append(defs, def)
			}

			_, err := NewRepository(defs)
			if err == nil {
				t.Fatal("expected error for bad balance table values")
			}
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *ConfigurationError, got %T", err)
			}
		})
	}
}

func cloneBalanceTables(src *BalanceTables) *BalanceTables {
	dst := &BalanceTables{
		XPBudget:         make(map[int]int, len(src.XPBudget)),
		CRXP:             make(map[string]int, len(src.CRXP)),
		SizeMultipliers:  make(map[int]float64, len(src.SizeMultipliers)),
		BalanceTolerance: src.BalanceTolerance,
		Tiers:            append([]DifficultyTier(nil), src.Tiers...),
	}
	for k, v := range src.XPBudget {
		dst.XPBudget[k] = v
	}
	for k, v := range src.CRXP {
		dst.CRXP[k] = v
	}
	for k, v := range src.SizeMultipliers {
		dst.SizeMultipliers[k] = v
	}
	return dst
}

func TestNewRepository_DuplicateCategory(t *testing.T) {
	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defs := make([]*Definition, 0, len(models.Categories())+1)
	for _, category := range models.Categories() {
		def, _ := repo.Get(category)
		defs = append(defs, def)
	}
	dup, _ := repo.Get(models.CategorySpell)
	defs = append(defs, dup)

	if _, err := NewRepository(defs); err == nil {
		t.Fatal("expected error for duplicate category")
	}
}

func TestStore_ReloadKeepsOldRepositoryOnFailure(t *testing.T) {
	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(repo)

	if err := store.Reload("testdata/gapped"); err == nil {
		t.Fatal("expected reload failure for broken rules")
	}
	if store.Current() != repo {
		t.Error("failed reload should keep the previous repository active")
	}

	if err := store.Reload("testdata/valid"); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if store.Current() == repo {
		t.Error("successful reload should swap in a new repository")
	}
}

func TestStore_SnapshotSurvivesReload(t *testing.T) {
	repo, err := Load("testdata/valid")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	store := NewStore(repo)

	snapshot := store.Current()
	if err := store.Reload("testdata/valid"); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	// The snapshot taken before the reload still answers lookups.
	if _, err := snapshot.Get(models.CategoryMonster); err != nil {
		t.Errorf("old snapshot lookup failed after reload: %v", err)
	}
}
