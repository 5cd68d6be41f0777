package commands

import (
	"encoding/json"
	"fmt"

	"github.com/kiranshivaraju/medequip/internal/knowledge"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/spf13/cobra"
)

type profileView struct {
	Category    string            `json:"category"`
	Name        string            `json:"name"`
	Conditions  map[string]string `json:"conditions"`
	PriceRanges map[string]string `json:"priceRanges"`
}

func newKnowledgeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Print the equipment knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb := knowledge.Default()
			out := cmd.OutOrStdout()

			if asJSON {
				var views []profileView
				for _, cat := range kb.Categories() {
					p, _ := kb.Lookup(cat)
					v := profileView{
						Category:    cat,
						Name:        p.Name,
						Conditions:  map[string]string{},
						PriceRanges: map[string]string{},
					}
					for _, c := range models.Conditions {
						v.Conditions[string(c)] = p.Conditions[c]
						v.PriceRanges[string(c)] = p.PriceRanges[c]
					}
					views = append(views, v)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			const row = "%-18s %-22s %-17s %-15s %-15s %-15s\n"
			fmt.Fprintf(out, row, "CATEGORY", "NAME", "EXCELLENT", "GOOD", "FAIR", "POOR")
			for _, cat := range kb.Categories() {
				p, _ := kb.Lookup(cat)
				fmt.Fprintf(out, row, cat, p.Name,
					p.PriceRanges[models.ConditionExcellent],
					p.PriceRanges[models.ConditionGood],
					p.PriceRanges[models.ConditionFair],
					p.PriceRanges[models.ConditionPoor],
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print full profiles as JSON")
	return cmd
}
