package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plootony/MISTY/internal/domain"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <question>",
		Short: "Ask the provider whether a question suits a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			ai, err := env.newReadingService()
			if err != nil {
				return err
			}
			return printJSON(cmd, ai.ValidateQuestion(cmd.Context(), args[0]))
		},
	}
}

func newZodiacCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zodiac <birth-date>",
		Short: "Print the zodiac sign for DD.MM.YYYY or YYYY-MM-DD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseBirthDate(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.ZodiacSign(args[0]))
			return nil
		},
	}
}

func newTariffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tariff <user-id> <tariff-id>",
		Short: "Move a user to another tariff",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			svc, store, err := env.newTarotService(nil)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := svc.SetTariff(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
