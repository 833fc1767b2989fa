package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/taldoflemis/pizzeria/pacchetto/pizza"
	"github.com/taldoflemis/pizzeria/pacchetto/timeofday"
)

func pizzaCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "pizza <size> [toppings...]",
		Short:   "Describe a pizza and print its price",
		Example: "  cassiere pizza small mushroom tomato pinapple",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pizza.Build(args[0], args[1:])
			if err != nil {
				return err
			}
			slog.Debug("pizza built", slog.String("size", p.Size().String()), slog.Int("toppings", len(p.Toppings())))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "A %s\n", p.Describe())
			fmt.Fprintf(out, "Price %6.2f\n", float64(p.Price()))
			return nil
		},
	}
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the sizes and their prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Size", "Base", "Per topping"})
			table.SetAutoFormatHeaders(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)

			for _, s := range pizza.Sizes() {
				prices := s.Prices()
				table.Append([]string{s.String(), strconv.Itoa(prices.Base), strconv.Itoa(prices.Topping)})
			}
			table.Render()
			return nil
		},
	}
}

func timeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time <hh:mm:ss>",
		Short: "Validate a time of day and print it normalised",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tod, err := timeofday.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", timeofday.Kind(err), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tod.String())
			return nil
		},
	}
}
