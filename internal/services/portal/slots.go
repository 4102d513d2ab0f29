package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
)

// slotDiscoveryJS collects candidate appointment-slot radio inputs from
// the live DOM, preferring the portal's known field-name conventions
// and falling back to any radio group. Labels are derived by priority:
// associated <label for>, nearest enclosing row/container, raw value.
const slotDiscoveryJS = `
(() => {
    const conventions = ['slot', 'time', 'appointment', 'schedule'];
    const radios = Array.from(document.querySelectorAll('input[type="radio"]'));
    let candidates = radios.filter((r) => {
        const name = (r.name || '').toLowerCase();
        return conventions.some((c) => name.includes(c));
    });
    if (candidates.length === 0) {
        candidates = radios;
    }
    return candidates.map((r) => {
        let label = '';
        if (r.id) {
            const assoc = document.querySelector('label[for="' + r.id + '"]');
            if (assoc) {
                label = assoc.textContent.trim();
            }
        }
        if (!label) {
            const row = r.closest('tr, li, .row, .slot, fieldset, div');
            if (row) {
                label = row.textContent.replace(/\s+/g, ' ').trim();
            }
        }
        if (!label) {
            label = r.value || '';
        }
        return {
            value: r.value || '',
            label: label,
            element_id: r.id || '',
            group_name: r.name || ''
        };
    });
})()
`

// DiscoverSlots evaluates the discovery snippet against the loaded page
// and returns slots in DOM order. Zero slots is a valid result; the
// caller decides whether that is an error.
func DiscoverSlots(ctx context.Context, page interfaces.Page) ([]models.Slot, error) {
	var slots []models.Slot
	if err := page.Evaluate(ctx, slotDiscoveryJS, &slots); err != nil {
		return nil, fmt.Errorf("evaluate slot discovery: %w", err)
	}

	for i := range slots {
		if slots[i].Label == "" {
			slots[i].Label = slots[i].Value
		}
	}
	return slots, nil
}

// Scoring weights. A day match dominates any time match; among time
// preferences the bonus decreases with list position so earlier caller
// preferences win.
const (
	dayMatchScore      = 100
	timeMatchBaseScore = 50
	timeMatchStep      = 5
)

var dayExpansions = map[string]string{
	"mon": "monday",
	"tue": "tuesday",
	"wed": "wednesday",
	"thu": "thursday",
	"fri": "friday",
	"sat": "saturday",
	"sun": "sunday",
}

// expandDay maps a 3-letter abbreviation to its full weekday name;
// other tokens pass through lowercased.
func expandDay(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))
	if full, ok := dayExpansions[lower]; ok {
		return full
	}
	return lower
}

// ScoreSlot computes the preference score for one slot label. Only the
// first matching day and the first matching time preference count; no
// double-counting.
func ScoreSlot(label string, preferredDays, preferredSlots []string) int {
	lower := strings.ToLower(label)
	score := 0

	for _, day := range preferredDays {
		token := strings.ToLower(strings.TrimSpace(day))
		if token == "" {
			continue
		}
		if strings.Contains(lower, token) || strings.Contains(lower, expandDay(token)) {
			score += dayMatchScore
			break
		}
	}

	labelTimes := extractTimeTokens(lower)
	for i, pref := range preferredSlots {
		token := strings.ToLower(strings.TrimSpace(pref))
		if token == "" {
			continue
		}
		if strings.Contains(lower, token) || tokensIntersect(extractTimeTokens(token), labelTimes) {
			bonus := timeMatchBaseScore - timeMatchStep*i
			if bonus > 0 {
				score += bonus
			}
			break
		}
	}

	return score
}

// SelectBestSlot ranks slots against the caller's preferences and
// returns the winner with its score. Ties keep the earliest slot in
// discovery order; with no preference matches the first discovered
// slot wins at score zero.
func SelectBestSlot(slots []models.Slot, preferredDays, preferredSlots []string) (models.Slot, int, error) {
	if len(slots) == 0 {
		return models.Slot{}, 0, models.ErrNoSlotsFound
	}

	bestIdx := 0
	bestScore := -1
	for i, slot := range slots {
		score := ScoreSlot(slot.Label, preferredDays, preferredSlots)
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	return slots[bestIdx], bestScore, nil
}

func tokensIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
