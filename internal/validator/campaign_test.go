package validator

import (
	"strings"
	"testing"

	"github.com/panverse/rules-agent/internal/models"
)

func wellFormedCampaign() models.Content {
	return models.Content{
		"name":        "The Shattered Crown",
		"description": "A low-level conspiracy campaign in which the party unravels the regicide that broke the kingdom's succession and races pretenders to the vault where the crown's shards are hidden.",
		"theme":       "political intrigue",
		"story_arcs": []any{
			map[string]any{
				"title":      "The Regicide",
				"acts":       []any{"The funeral", "The forged will"},
				"climax":     "The pretender is unmasked at the coronation",
				"resolution": "The rightful heir takes a diminished throne",
			},
		},
		"key_npcs": []any{
			map[string]any{
				"name": "Seneschal Varro", "race": "human", "class": "rogue", "background": "noble",
				"personality": map[string]any{
					"traits": "meticulous", "ideals": "order", "bonds": "the late king", "flaws": "pride",
				},
			},
			map[string]any{
				"name": "Keeper Ilda", "race": "dwarf", "class": "cleric", "background": "acolyte",
				"personality": map[string]any{
					"traits": "blunt", "ideals": "truth", "bonds": "her order", "flaws": "stubborn",
				},
			},
		},
		"key_locations": []any{
			map[string]any{
				"name": "The Broken Keep", "type": "dungeon",
				"description": "The old royal keep, sealed since the regicide, its halls patrolled by oath-bound dead.",
			},
			map[string]any{
				"name": "Greyharbor", "type": "city",
				"description": "A salt-stained port city where every faction keeps an ear in the taverns and a knife in the fog.",
			},
		},
	}
}

func TestCampaignValidator_WellFormed(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	outcome := v.Validate(wellFormedCampaign(), mustGet(t, repo, models.CategoryCampaign), repo)

	if status := models.DeriveStatus(outcome.Issues); status != models.StatusValid {
		t.Errorf("status = %s, want valid; issues: %+v", status, outcome.Issues)
	}
	if outcome.Components[ComponentCompleteness] != 1.0 {
		t.Errorf("completeness = %v, want 1.0", outcome.Components[ComponentCompleteness])
	}
	if outcome.Components[ComponentBalance] != 1.0 {
		t.Errorf("balance = %v, want 1.0 with no embedded encounters", outcome.Components[ComponentBalance])
	}
	for _, name := range []string{ComponentNPCs, ComponentLocations, ComponentItems, ComponentEncounters, ComponentMonsters} {
		if _, ok := outcome.Components[name]; !ok {
			t.Errorf("diagnostic component %s missing", name)
		}
	}
}

func TestCampaignValidator_StructuralMinimums(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	content := models.Content{
		"name":        "Empty Campaign",
		"description": "A campaign with nothing in it besides a premise that never goes anywhere at all.",
		"theme":       "emptiness",
	}
	outcome := v.Validate(content, mustGet(t, repo, models.CategoryCampaign), repo)

	for _, field := range []string{"story_arcs", "key_npcs", "key_locations"} {
		issue := issueOn(outcome.Issues, field)
		if issue == nil {
			t.Errorf("missing %s produced no structural issue", field)
			continue
		}
		if issue.Severity != models.SeverityError {
			t.Errorf("structural issue on %s has severity %s, want error", field, issue.Severity)
		}
	}
	if status := models.DeriveStatus(outcome.Issues); status != models.StatusInvalid {
		t.Errorf("status = %s, want invalid", status)
	}
	if len(outcome.Issues) < 3 {
		t.Errorf("expected at least 3 issues, got %d", len(outcome.Issues))
	}
}

func TestCampaignValidator_NPCChecks(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	content := wellFormedCampaign()
	content["key_npcs"] = []any{
		map[string]any{
			"name": "Seneschal Varro", "race": "vampire", "class": "accountant", "background": "noble",
			"personality": map[string]any{"traits": "meticulous", "ideals": "order", "bonds": "the late king", "flaws": "pride"},
		},
		map[string]any{
			"name": "Keeper Ilda", "race": "dwarf", "class": "cleric", "background": "acolyte",
			"personality": map[string]any{"traits": "blunt"},
		},
	}
	outcome := v.Validate(content, mustGet(t, repo, models.CategoryCampaign), repo)

	if issueOn(outcome.Issues, "key_npcs[0].race") == nil {
		t.Error("unknown race produced no issue")
	}
	if issueOn(outcome.Issues, "key_npcs[0].class") == nil {
		t.Error("unknown class produced no issue")
	}
	if issueOn(outcome.Issues, "key_npcs[1].personality.ideals") == nil {
		t.Error("missing personality facet produced no issue")
	}
	if outcome.Components[ComponentNPCs] >= 1.0 {
		t.Error("npcs diagnostic should degrade on NPC issues")
	}
}

func TestCampaignValidator_ThinStoryArc(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	content := wellFormedCampaign()
	content["story_arcs"] = []any{
		map[string]any{"title": "Arc"},
	}
	outcome := v.Validate(content, mustGet(t, repo, models.CategoryCampaign), repo)

	for _, field := range []string{"story_arcs[0].title", "story_arcs[0].acts", "story_arcs[0].climax", "story_arcs[0].resolution"} {
		issue := issueOn(outcome.Issues, field)
		if issue == nil {
			t.Errorf("thin arc produced no issue on %s", field)
			continue
		}
		if issue.Severity != models.SeverityWarning {
			t.Errorf("arc issue on %s has severity %s, want warning", field, issue.Severity)
		}
	}
	if outcome.Components[ComponentEngagement] >= 1.0 {
		t.Error("engagement should degrade on thin story arcs")
	}
	if models.DeriveStatus(outcome.Issues) == models.StatusInvalid {
		t.Error("thin arcs alone must not make a campaign invalid")
	}
}

func TestCampaignValidator_NestedEncounterBalance(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	content := wellFormedCampaign()
	content["encounters"] = []any{
		map[string]any{
			"name": "Vault Guardians", "party_level": 5, "party_size": 4,
			"monsters": []any{map[string]any{"challenge_rating": "2", "count": 1}},
		},
		map[string]any{
			"name": "The Pretender's Trap", "party_level": 3, "party_size": 4,
			"monsters": []any{map[string]any{"challenge_rating": "1", "count": 4}},
		},
	}
	outcome := v.Validate(content, mustGet(t, repo, models.CategoryCampaign), repo)

	// Mean of 0.9 (balanced) and 0.0 (deadly overbudget).
	if got := outcome.Components[ComponentBalance]; got != 0.45 {
		t.Errorf("balance = %v, want 0.45", got)
	}

	found := false
	for _, issue := range outcome.Issues {
		if strings.HasPrefix(issue.Field, "encounters[1].") {
			found = true
		}
	}
	if !found {
		t.Error("nested encounter issues should carry the encounters[1] prefix")
	}
}

func TestCampaignValidator_NestedMonsterPrefix(t *testing.T) {
	repo := testRepo(t)
	reg := NewRegistry(stubScorer{}, newTestLogger())
	v := newCampaignValidator(stubScorer{}, reg, newTestLogger())

	content := wellFormedCampaign()
	content["key_monsters"] = []any{
		map[string]any{"name": "The Oathbound"},
	}
	outcome := v.Validate(content, mustGet(t, repo, models.CategoryCampaign), repo)

	if issueOn(outcome.Issues, "key_monsters[0].size") == nil {
		t.Error("nested monster issue should be prefixed with key_monsters[0]")
	}
	if outcome.Components[ComponentMonsters] >= 1.0 {
		t.Error("monsters diagnostic should degrade on nested monster issues")
	}
}
