// Package safety screens planned meals against a user's dietary restrictions.
package safety

import (
	"fmt"
	"strings"

	"github.com/nutrigenie/nutrigenie/internal/model"
)

// Conflict identifies one restricted substance found in a planned meal.
type Conflict struct {
	Day        int    `json:"day"`
	Slot       string `json:"slot"`
	RecipeName string `json:"recipeName"`
	Ingredient string `json:"ingredient"`
	Restricted string `json:"restricted"`
	Severity   string `json:"severity"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s (day %d, %s): ingredient %q conflicts with %s restriction %q",
		c.RecipeName, c.Day, c.Slot, c.Ingredient, c.Severity, c.Restricted)
}

// Verdict is the outcome of screening a plan. Fatal holds critical-severity
// conflicts that must block persistence; Advisory holds moderate and mild
// conflicts that are surfaced but do not gate the plan.
type Verdict struct {
	Fatal    []Conflict
	Advisory []Conflict
}

// OK reports whether the plan is safe to persist.
func (v Verdict) OK() bool { return len(v.Fatal) == 0 }

// Screen checks every ingredient of every meal against every restriction.
// Matching is a case-insensitive substring test in both directions, so a
// "peanut" restriction catches "peanut butter" and a "tree nuts" restriction
// catches "nuts".
func Screen(meals []*model.PlannedMeal, restrictions []*model.Restriction) Verdict {
	var v Verdict
	for _, meal := range meals {
		for _, ing := range meal.Ingredients {
			for _, r := range restrictions {
				if !matches(ing, r.Value) {
					continue
				}
				c := Conflict{
					Day:        meal.Day,
					Slot:       meal.Slot,
					RecipeName: meal.RecipeName,
					Ingredient: ing,
					Restricted: r.Value,
					Severity:   r.Severity,
				}
				if r.Severity == model.SeverityCritical {
					v.Fatal = append(v.Fatal, c)
				} else {
					v.Advisory = append(v.Advisory, c)
				}
			}
		}
	}
	return v
}

func matches(ingredient, restricted string) bool {
	ing := strings.ToLower(strings.TrimSpace(ingredient))
	res := strings.ToLower(strings.TrimSpace(restricted))
	if ing == "" || res == "" {
		return false
	}
	return strings.Contains(ing, res) || strings.Contains(res, ing)
}
