package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiranshivaraju/medequip/internal/app"
	"github.com/kiranshivaraju/medequip/internal/vision"
	"github.com/kiranshivaraju/medequip/pkg/models"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(load configLoader) *cobra.Command {
	var heuristicOnly bool

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze one equipment photo and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			path := args[0]
			image, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			if int64(len(image)) > cfg.Upload.MaxBytes {
				return fmt.Errorf("%s is %d bytes, over the %d byte limit", path, len(image), cfg.Upload.MaxBytes)
			}

			opts := []app.Option{app.WithoutBackingServices()}
			if heuristicOnly {
				opts = append(opts, app.WithModel(nil))
			}
			a, err := app.New(cmd.Context(), cfg, opts...)
			if err != nil {
				return err
			}
			defer a.Close()

			req := models.AnalysisRequest{
				Image:    image,
				Filename: filepath.Base(path),
				Size:     int64(len(image)),
			}
			req.MIMEType = vision.MIMEType(req)

			result, err := a.Service.Analyze(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", path, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&heuristicOnly, "heuristic-only", false, "Skip the vision model and use the filename/size heuristic")
	return cmd
}
