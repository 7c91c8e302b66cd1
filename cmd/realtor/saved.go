package main

import (
	"fmt"
	"strings"

	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/favorites"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	visitOnly bool
	visitOff  bool
	saveVisit bool
	property  favorites.PropertyData
)

var savedCmd = &cobra.Command{
	Use:     "saved",
	Aliases: []string{"favorites"},
	Short:   "Manage saved properties",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var client *favorites.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		props, err := client.GetSavedProperties(cmd.Context(), visitOnly)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, props, func() pterm.TableData {
			return savedRows(props)
		})
	},
}

var savedCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count saved properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var client *favorites.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		count, err := client.GetSavedCount(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, count, func() pterm.TableData {
			return pterm.TableData{
				{"Total", "Favorites", "To visit"},
				{fmt.Sprint(count.Total), fmt.Sprint(count.Favorites), fmt.Sprint(count.Visit)},
			}
		})
	},
}

var savedAddCmd = &cobra.Command{
	Use:   "add <property-id>",
	Short: "Save a property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(property.FormattedAddress) == "" {
			return fmt.Errorf("--address is required")
		}

		var client *favorites.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		data := property
		data.ID = args[0]
		saved, err := client.SaveProperty(cmd.Context(), args[0], data, saveVisit)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, saved, func() pterm.TableData {
			return savedRows([]favorites.SavedProperty{*saved})
		})
	},
}

var savedRemoveCmd = &cobra.Command{
	Use:     "remove <property-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a saved property",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var client *favorites.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		if err := client.DeleteProperty(cmd.Context(), args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Removed %s", args[0])
		return nil
	},
}

var savedVisitCmd = &cobra.Command{
	Use:   "visit <property-id>",
	Short: "Mark a saved property for a visit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var client *favorites.Client
		stop, err := signedIn(cmd, &client)
		if err != nil {
			return err
		}
		defer stop()

		saved, err := client.ToggleVisitFlag(cmd.Context(), args[0], !visitOff)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, saved, func() pterm.TableData {
			return savedRows([]favorites.SavedProperty{*saved})
		})
	},
}

var savedMergeCmd = &cobra.Command{
	Use:   "merge [session-id]",
	Short: "Move properties saved in an anonymous chat session to your account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			client     *favorites.Client
			chatClient *chat.Client
		)
		stop, err := signedIn(cmd, &client, &chatClient)
		if err != nil {
			return err
		}
		defer stop()

		sessionID := chatClient.SessionID()
		if len(args) == 1 {
			sessionID = args[0]
		}
		if sessionID == "" {
			return fmt.Errorf("no chat session to merge")
		}
		merged, err := client.MergeSession(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Merged %d properties from session %s", merged, sessionID)
		return nil
	},
}

func init() {
	savedListCmd.Flags().BoolVar(&visitOnly, "visit-only", false, "Only list properties marked for a visit")
	savedVisitCmd.Flags().BoolVar(&visitOff, "off", false, "Clear the visit mark instead")

	fs := savedAddCmd.Flags()
	fs.StringVar(&property.FormattedAddress, "address", "", "Street address")
	fs.Float64Var(&property.Price, "price", 0, "Listing price")
	fs.Float64Var(&property.Bedrooms, "beds", 0, "Bedrooms")
	fs.Float64Var(&property.Bathrooms, "baths", 0, "Bathrooms")
	fs.Float64Var(&property.SquareFootage, "sqft", 0, "Square feet")
	fs.StringVar(&property.PropertyType, "type", "", "Property type")
	fs.StringVar(&property.City, "city", "", "City")
	fs.StringVar(&property.ZipCode, "zip", "", "Zip code")
	fs.StringVar(&property.SourceURL, "url", "", "Listing URL")
	fs.BoolVar(&saveVisit, "visit", false, "Also mark the property for a visit")

	savedCmd.AddCommand(savedListCmd, savedCountCmd, savedAddCmd, savedRemoveCmd, savedVisitCmd, savedMergeCmd)
	rootCmd.AddCommand(savedCmd)
}

func savedRows(props []favorites.SavedProperty) pterm.TableData {
	rows := pterm.TableData{{"ID", "Address", "Price", "Beds", "Baths", "Sqft", "Visit", "Saved"}}
	for _, p := range props {
		price := formatPrice(p.Price)
		if p.SnapshotPrice != 0 && p.SnapshotPrice != p.Price {
			price += " (was " + formatPrice(p.SnapshotPrice) + ")"
		}
		rows = append(rows, []string{
			p.PropertyID,
			truncate(p.FormattedAddress, 48),
			price,
			formatFloat(p.Bedrooms),
			formatFloat(p.Bathrooms),
			humanInt(int64(p.SquareFootage)),
			yesNo(p.IsVisitCandidate),
			p.FavoritedAt,
		})
	}
	return rows
}
