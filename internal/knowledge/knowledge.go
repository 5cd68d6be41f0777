// Package knowledge holds the static equipment knowledge base: display names,
// per-grade narratives and per-grade price ranges.
package knowledge

import (
	"sort"
	"strings"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// Profile describes one equipment category.
type Profile struct {
	Name        string
	Conditions  map[models.Condition]string
	PriceRanges map[models.Condition]string
}

// Base is an immutable category → Profile table. It is never mutated after
// construction and is safe for concurrent reads.
type Base struct {
	profiles map[string]Profile
	generic  Profile
}

// Default returns the built-in knowledge base.
func Default() *Base {
	return defaultBase
}

var defaultBase = &Base{profiles: profiles, generic: profiles[models.GenericEquipment]}

// Lookup returns the profile for category, matching case- and
// whitespace-insensitively. ok is false when the generic profile was used.
func (b *Base) Lookup(category string) (p Profile, ok bool) {
	if p, ok := b.profiles[normalize(category)]; ok {
		return p, true
	}
	return b.generic, false
}

// Categories lists every known category key in sorted order.
func (b *Base) Categories() []string {
	keys := make([]string, 0, len(b.profiles))
	for k := range b.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalize(category string) string {
	return strings.Join(strings.Fields(strings.ToLower(category)), " ")
}

var profiles = map[string]Profile{
	"wheelchair": {
		Name: "Wheelchair",
		Conditions: map[models.Condition]string{
			models.ConditionExcellent: "Like new condition, all components working perfectly, minimal wear on wheels and frame.",
			models.ConditionGood:      "Minor cosmetic wear, fully functional, wheels and brakes in good condition.",
			models.ConditionFair:      "Noticeable wear, may need wheel or brake adjustment, still operational.",
			models.ConditionPoor:      "Significant wear, safety concerns, requires repair or replacement of major components.",
		},
		PriceRanges: map[models.Condition]string{
			models.ConditionExcellent: "$300 - $800",
			models.ConditionGood:      "$150 - $300",
			models.ConditionFair:      "$50 - $150",
			models.ConditionPoor:      "Under $50",
		},
	},
	"microscope": {
		Name: "Laboratory Microscope",
		Conditions: map[models.Condition]string{
			models.ConditionExcellent: "Optics crystal clear, mechanical stages smooth, illumination working perfectly.",
			models.ConditionGood:      "Minor scratches on body, optics slightly dusty but fully functional.",
			models.ConditionFair:      "Noticeable wear, some mechanical stiffness, optics may need cleaning.",
			models.ConditionPoor:      "Significant damage, misaligned optics, mechanical issues.",
		},
		PriceRanges: map[models.Condition]string{
			models.ConditionExcellent: "$2,000 - $5,000",
			models.ConditionGood:      "$800 - $2,000",
			models.ConditionFair:      "$300 - $800",
			models.ConditionPoor:      "Under $300",
		},
	},
	"stethoscope": {
		Name: "Medical Stethoscope",
		Conditions: map[models.Condition]string{
			models.ConditionExcellent: "Like new condition, perfect acoustic quality, tubing flexible.",
			models.ConditionGood:      "Minor cosmetic wear, good acoustic performance.",
			models.ConditionFair:      "Reduced acoustic quality, tubing stiffening.",
			models.ConditionPoor:      "Compromised functionality, cracked tubing.",
		},
		PriceRanges: map[models.Condition]string{
			models.ConditionExcellent: "$100 - $300",
			models.ConditionGood:      "$50 - $100",
			models.ConditionFair:      "$20 - $50",
			models.ConditionPoor:      "Under $20",
		},
	},
	models.GenericEquipment: {
		Name: "Medical Device",
		Conditions: map[models.Condition]string{
			models.ConditionExcellent: "Like new condition, fully functional, no visible damage.",
			models.ConditionGood:      "Good working condition, minor cosmetic wear.",
			models.ConditionFair:      "Operational but shows significant wear.",
			models.ConditionPoor:      "Poor condition, requires repair or replacement.",
		},
		PriceRanges: map[models.Condition]string{
			models.ConditionExcellent: "Varies by device",
			models.ConditionGood:      "Varies by device",
			models.ConditionFair:      "Varies by device",
			models.ConditionPoor:      "Minimal value",
		},
	},
}
