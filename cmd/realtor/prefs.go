package main

import (
	"fmt"
	"strings"

	"github.com/brizzai/realtor-cli/internal/preferences"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var suggestionLimit int

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change your search preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show your saved preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var client *preferences.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		prefs, err := client.GetUserPreferences(cmd.Context())
		if err != nil {
			return err
		}
		if prefs == nil {
			pterm.Info.Println("No preferences saved yet, use `realtor prefs set`")
			return nil
		}
		return render(cmd.OutOrStdout(), cfg.Output, prefs, func() pterm.TableData {
			return prefsRows(prefs)
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change your preferences; flags left out keep their value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var client *preferences.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		prefs, err := client.GetUserPreferences(cmd.Context())
		if err != nil {
			return err
		}
		if prefs == nil {
			prefs = &preferences.UserPreferences{}
		}
		if err := applyPrefsFlags(cmd.Flags(), prefs); err != nil {
			return err
		}

		resp, err := client.SaveUserPreferences(cmd.Context(), *prefs)
		if err != nil {
			return err
		}
		if resp.Error != "" {
			return fmt.Errorf("failed to save preferences: %s", resp.Error)
		}
		pterm.Success.Println("Preferences saved")
		return nil
	},
}

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List listings that match your preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var client *preferences.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		resp, err := client.GetPropertySuggestions(cmd.Context(), suggestionLimit)
		if err != nil {
			return err
		}
		if !resp.HasPreferences && cfg.Output == outputTable {
			msg := resp.Message
			if msg == "" {
				msg = "Save your preferences first with `realtor prefs set`"
			}
			pterm.Info.Println(msg)
			return nil
		}
		return render(cmd.OutOrStdout(), cfg.Output, resp, func() pterm.TableData {
			rows := pterm.TableData{{"Address", "Price", "Beds", "Baths", "Sqft", "Days", "Source"}}
			for _, s := range resp.Suggestions {
				rows = append(rows, []string{
					s.Address,
					formatPrice(s.Price),
					formatFloat(s.Beds),
					formatFloat(s.Baths),
					humanInt(int64(s.Sqft)),
					formatFloat(s.DaysOnMarket),
					s.Source,
				})
			}
			return rows
		})
	},
}

func init() {
	addPrefsFlags(prefsSetCmd.Flags())

	suggestionsCmd.Flags().IntVar(&suggestionLimit, "limit", preferences.DefaultSuggestionLimit, "Maximum number of listings")

	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)
	rootCmd.AddCommand(prefsCmd, suggestionsCmd)
}

func addPrefsFlags(fs *pflag.FlagSet) {
	fs.String("email", "", "Contact email")
	fs.StringSlice("zip", nil, "Zip codes, comma separated")
	fs.String("type", "", "Property type, for example house or condo")
	for _, name := range []string{"price", "beds", "baths", "sqft"} {
		fs.Float64(name+"-min", 0, "Minimum "+name)
		fs.Float64(name+"-max", 0, "Maximum "+name)
	}
	fs.Bool("clear-ranges", false, "Drop the ranges not given on the command line")
}

// applyPrefsFlags copies the flags that were set onto prefs
func applyPrefsFlags(fs *pflag.FlagSet, prefs *preferences.UserPreferences) error {
	if reset, _ := fs.GetBool("clear-ranges"); reset {
		prefs.PriceRange, prefs.Bedrooms, prefs.Bathrooms, prefs.Sqft = nil, nil, nil, nil
	}
	if fs.Changed("email") {
		email, _ := fs.GetString("email")
		prefs.Email = optional(strings.TrimSpace(email))
	}
	if fs.Changed("type") {
		kind, _ := fs.GetString("type")
		prefs.PropertyType = optional(strings.TrimSpace(kind))
	}
	if fs.Changed("zip") {
		zips, _ := fs.GetStringSlice("zip")
		prefs.ZipCodes = nil
		for _, z := range zips {
			if z = strings.TrimSpace(z); z != "" {
				prefs.ZipCodes = append(prefs.ZipCodes, z)
			}
		}
	}

	ranges := map[string]**preferences.Range{
		"price": &prefs.PriceRange,
		"beds":  &prefs.Bedrooms,
		"baths": &prefs.Bathrooms,
		"sqft":  &prefs.Sqft,
	}
	for name, target := range ranges {
		if err := applyRange(fs, name, target); err != nil {
			return err
		}
	}
	return nil
}

func applyRange(fs *pflag.FlagSet, name string, target **preferences.Range) error {
	minChanged, maxChanged := fs.Changed(name+"-min"), fs.Changed(name+"-max")
	if !minChanged && !maxChanged {
		return nil
	}
	r := &preferences.Range{}
	if *target != nil {
		*r = **target
	}
	if minChanged {
		v, _ := fs.GetFloat64(name + "-min")
		r.Min = &v
	}
	if maxChanged {
		v, _ := fs.GetFloat64(name + "-max")
		r.Max = &v
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("--%s-min must not be greater than --%s-max", name, name)
	}
	*target = r
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func prefsRows(p *preferences.UserPreferences) pterm.TableData {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return pterm.TableData{
		{"Setting", "Value"},
		{"Email", deref(p.Email)},
		{"Price", formatRange(p.PriceRange, formatPrice)},
		{"Zip codes", strings.Join(p.ZipCodes, ", ")},
		{"Bedrooms", formatRange(p.Bedrooms, formatFloat)},
		{"Bathrooms", formatRange(p.Bathrooms, formatFloat)},
		{"Square feet", formatRange(p.Sqft, func(v float64) string { return humanInt(int64(v)) })},
		{"Property type", deref(p.PropertyType)},
		{"Updated", p.UpdatedAt},
	}
}

func formatRange(r *preferences.Range, format func(float64) string) string {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return "any"
	}
	switch {
	case r.Min == nil:
		return "up to " + format(*r.Max)
	case r.Max == nil:
		return format(*r.Min) + "+"
	default:
		return format(*r.Min) + " - " + format(*r.Max)
	}
}
