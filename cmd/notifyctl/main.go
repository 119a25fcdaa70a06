// Command notifyctl is an operator tool for the reminder pipeline. It answers
// "who would we notify right now" without sending anything, validates
// timezones the way the API does, and generates VAPID key pairs for new
// deployments.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plateful/backend/internal/reminder"
	"github.com/plateful/backend/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "notifyctl",
	Short: "Plateful reminder operations",
	Long:  "Inspects and exercises the reminder pipeline against a live database without delivering notifications",
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one dry eligibility pass",
	Long:  "Loads every reminder snapshot and prints the users that would be notified at the given instant. Nothing is sent and nothing is logged to the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := viper.GetString("database_url")
		if dbURL == "" {
			return fmt.Errorf("database_url not configured (flag --database-url or env DATABASE_URL)")
		}

		now := time.Now().UTC()
		if at := viper.GetString("at"); at != "" {
			parsed, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --at value %q: %w", at, err)
			}
			now = parsed.UTC()
		}

		db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		prefs := service.NewPreferenceService(db)
		snaps, err := prefs.ListReminderSnapshots(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load reminder snapshots: %w", err)
		}

		eval := reminder.NewEvaluator(reminder.WaterPolicy(viper.GetString("water_reminder_policy")), nil)
		quietStart := viper.GetInt("quiet_start_minutes")
		quietEnd := viper.GetInt("quiet_end_minutes")
		eval.QuietStart = &quietStart
		eval.QuietEnd = &quietEnd

		result := eval.Evaluate(now, snaps)

		zones := make(map[string]string, len(snaps))
		for _, s := range snaps {
			zones[s.UserID] = s.Timezone
		}
		printDue := func(kind string, ids []string) {
			for _, id := range ids {
				local := now.In(reminder.ResolveTimezone(zones[id]))
				fmt.Printf("%-10s %s  local %s (%s)\n", kind, id, local.Format("15:04"), zones[id])
			}
		}

		fmt.Printf("Evaluated %d snapshots at %s\n", len(snaps), now.Format(time.RFC3339))
		printDue("breakfast", result.Breakfast)
		printDue("lunch", result.Lunch)
		printDue("dinner", result.Dinner)
		printDue("sleep", result.Sleep)
		printDue("water", result.Water)
		fmt.Printf("%d due\n", result.Total())
		return nil
	},
}

var tzCmd = &cobra.Command{
	Use:   "tz <zone>",
	Short: "Validate an IANA timezone",
	Long:  "Checks a timezone name against the same rules the registration API applies and prints the current local time there",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zone := args[0]
		if !reminder.IsValidTimezone(zone) {
			return fmt.Errorf("unknown timezone %q", zone)
		}
		now := time.Now().UTC()
		local := now.In(reminder.ResolveTimezone(zone))
		fmt.Printf("%s is valid\n", zone)
		fmt.Printf("local time %s, minute of day %d\n", local.Format("15:04"), reminder.LocalMinutes(now, zone))
		return nil
	},
}

var vapidCmd = &cobra.Command{
	Use:   "vapid",
	Short: "Generate a VAPID key pair",
	Long:  "Prints a fresh key pair for VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY. Generate once per deployment; rotating keys invalidates every stored push subscription.",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			return fmt.Errorf("failed to generate VAPID keys: %w", err)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
		fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection URL")
	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))

	tickCmd.Flags().String("at", "", "Evaluate at this RFC3339 instant instead of now")
	tickCmd.Flags().String("water-policy", string(reminder.WaterPolicyInterval), "Water reminder policy: fixed or interval")
	tickCmd.Flags().Int("quiet-start", 1320, "Default quiet window start, minutes after local midnight")
	tickCmd.Flags().Int("quiet-end", 480, "Default quiet window end, minutes after local midnight")
	viper.BindPFlag("at", tickCmd.Flags().Lookup("at"))
	viper.BindPFlag("water_reminder_policy", tickCmd.Flags().Lookup("water-policy"))
	viper.BindPFlag("quiet_start_minutes", tickCmd.Flags().Lookup("quiet-start"))
	viper.BindPFlag("quiet_end_minutes", tickCmd.Flags().Lookup("quiet-end"))

	viper.AutomaticEnv()

	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(tzCmd)
	rootCmd.AddCommand(vapidCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
