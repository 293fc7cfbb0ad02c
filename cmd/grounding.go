package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var newsCmd = &cobra.Command{
	Use:   "news <busca>",
	Short: "Busca notícias recentes e editais abertos",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		client, err := env.grounding(cmd.Context())
		if err != nil {
			return err
		}
		res, err := client.News(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Println(res.Text)
		if len(res.Sources) > 0 {
			fmt.Println("\nFontes:")
			for _, s := range res.Sources {
				fmt.Printf("  • %s — %s\n", s.Title, s.URI)
			}
		}
		return nil
	},
}

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Sugere bibliotecas, salas de estudo e cursinhos próximos",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		client, err := env.grounding(cmd.Context())
		if err != nil {
			return err
		}
		res, err := client.Places(cmd.Context(), lat, lng)
		if err != nil {
			return err
		}

		fmt.Println(res.Text)
		if len(res.Places) > 0 {
			fmt.Println("\nLocais:")
			for _, p := range res.Places {
				fmt.Printf("  • %s — %s\n", p.Title, p.URI)
			}
		}
		return nil
	},
}

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Edita uma imagem de material de estudo",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		prompt, _ := cmd.Flags().GetString("prompt")

		data, err := os.ReadFile(in)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		env, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		client, err := env.grounding(cmd.Context())
		if err != nil {
			return err
		}
		res, err := client.EditImage(cmd.Context(), data, http.DetectContentType(data), prompt)
		if err != nil {
			return err
		}

		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		fmt.Printf("Imagem salva em %s (%s, %d bytes)\n", out, res.MIMEType, len(res.Data))
		return nil
	},
}

func init() {
	placesCmd.Flags().Float64("lat", 0, "Latitude")
	placesCmd.Flags().Float64("lng", 0, "Longitude")
	_ = placesCmd.MarkFlagRequired("lat")
	_ = placesCmd.MarkFlagRequired("lng")

	imageCmd.Flags().String("in", "", "Input image file (required)")
	imageCmd.Flags().String("out", "editada.png", "Output file")
	imageCmd.Flags().String("prompt", "", "Edit instruction (required)")
	_ = imageCmd.MarkFlagRequired("in")
	_ = imageCmd.MarkFlagRequired("prompt")
}
