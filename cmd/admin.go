package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"seedbot/config"
	"seedbot/database"
	"seedbot/repository"
	"seedbot/service"
)

// Admin executes a one-shot operator command against the ledger and
// the control-API fleet, then exits. This is the management surface
// for everything the accrual daemon does not do on its own.
func Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: seedbot admin <register|unlink|status|redeem|gift|grant|hide|unhide|leaderboard> [args...]")
	}

	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fleet := newFleet(cfg)
	uowFactory := repository.NewUnitOfWorkFactory(db)

	players := service.NewPlayerService(uowFactory)
	vip := service.NewVIPService(uowFactory, fleet, cfg.VIPRewardHours, cfg.NeverExpiresCutoff)
	transfers := service.NewTransferService(uowFactory)
	stats := service.NewStatsService(uowFactory)

	command, args := args[0], args[1:]
	switch command {
	case "register":
		discordID, playerID, err := discordAndPlayer(args)
		if err != nil {
			return err
		}
		player, err := players.Register(ctx, discordID, playerID)
		if err != nil {
			return err
		}
		fmt.Printf("Linked %s (%s) to Discord account %d\n", player.PlayerName, player.PlayerID, discordID)

	case "unlink":
		if len(args) != 1 {
			return fmt.Errorf("usage: seedbot admin unlink <discord-id>")
		}
		discordID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord ID %q", args[0])
		}
		if err := players.Unlink(ctx, discordID); err != nil {
			return err
		}
		fmt.Printf("Unlinked Discord account %d\n", discordID)

	case "status":
		if len(args) != 1 {
			return fmt.Errorf("usage: seedbot admin status <discord-id>")
		}
		discordID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord ID %q", args[0])
		}
		player, status, err := vip.Status(ctx, discordID)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s): %d hour(s) banked, %s seeded lifetime\n",
			player.PlayerName, player.PlayerID, player.BankedHours(), player.TotalSeedingTime)
		switch {
		case status.Expiration == nil:
			fmt.Println("VIP: none")
		case status.NeverExpires:
			fmt.Println("VIP: never expires")
		case status.Expired:
			fmt.Printf("VIP: expired %s\n", status.Expiration.Format(time.RFC3339))
		default:
			fmt.Printf("VIP: until %s\n", status.Expiration.Format(time.RFC3339))
		}

	case "redeem":
		if len(args) != 2 {
			return fmt.Errorf("usage: seedbot admin redeem <discord-id> <hours>")
		}
		discordID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord ID %q", args[0])
		}
		hours, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid hour count %q", args[1])
		}
		result, err := vip.Redeem(ctx, discordID, hours)
		if err != nil {
			return err
		}
		if result.NeverExpires {
			fmt.Println("VIP already never expires; nothing was spent")
			return nil
		}
		fmt.Printf("Spent %d hour(s) for %d hour(s) of VIP, now until %s; %s still banked\n",
			result.HoursSpent, result.VIPHoursGranted, result.NewExpiration.Format(time.RFC3339), result.NewBalance)

	case "gift":
		if len(args) != 3 {
			return fmt.Errorf("usage: seedbot admin gift <sender-discord-id> <recipient-discord-id> <hours>")
		}
		sender, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord ID %q", args[0])
		}
		recipient, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discord ID %q", args[1])
		}
		hours, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid hour count %q", args[2])
		}
		result, err := transfers.Gift(ctx, sender, recipient, hours)
		if err != nil {
			return err
		}
		fmt.Printf("Gifted %d hour(s) to %s; sender now has %s banked\n",
			result.Hours, result.RecipientName, result.SenderBalance)

	case "grant":
		if len(args) != 2 {
			return fmt.Errorf("usage: seedbot admin grant <player-id> <hours>")
		}
		hours, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid hour count %q", args[1])
		}
		player, err := players.GrantSeederTime(ctx, args[0], hours)
		if err != nil {
			return err
		}
		fmt.Printf("Granted %d hour(s) to %s; now %d hour(s) banked\n", hours, player.PlayerName, player.BankedHours())

	case "hide", "unhide":
		if len(args) != 1 {
			return fmt.Errorf("usage: seedbot admin %s <player-id>", command)
		}
		if err := players.SetHidden(ctx, args[0], command == "hide"); err != nil {
			return err
		}
		fmt.Printf("Player %s is now %s on the leaderboard\n", args[0], map[bool]string{true: "hidden", false: "visible"}[command == "hide"])

	case "leaderboard":
		days := 30
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[0])
			}
			days = parsed
		}
		since := time.Now().AddDate(0, 0, -days)
		entries, err := stats.Leaderboard(ctx, since, 25)
		if err != nil {
			return err
		}
		fmt.Printf("Top seeders over the last %d day(s):\n", days)
		for i, entry := range entries {
			fmt.Printf("%2d. %-30s %s\n", i+1, entry.PlayerName, entry.SeededTime)
		}

	default:
		return fmt.Errorf("unknown admin command: %s", command)
	}

	return nil
}

func discordAndPlayer(args []string) (int64, string, error) {
	if len(args) != 2 {
		return 0, "", fmt.Errorf("usage: seedbot admin register <discord-id> <player-id>")
	}
	discordID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid discord ID %q", args[0])
	}
	return discordID, args[1], nil
}
