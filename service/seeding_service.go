package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"seedbot/config"
	"seedbot/models"
	"seedbot/rcon"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// SeedingService polls every endpoint's roster on a fixed tick and
// credits banked time to players seeding under-populated servers.
type SeedingService struct {
	uowFactory UnitOfWorkFactory
	fleet      ServerFleet

	threshold     int
	tick          time.Duration
	window        config.SeedingWindow
	rewardMessage string
	allowMessages bool

	now func() time.Time

	scheduler gocron.Scheduler

	// openSessions tracks, per server, the start time of each player's
	// current seeding session. Only touched from tick processing, which
	// the singleton job mode keeps non-overlapping.
	openSessions map[string]map[string]time.Time

	notifyWG sync.WaitGroup
}

// NewSeedingService creates a new seeding service
func NewSeedingService(uowFactory UnitOfWorkFactory, fleet ServerFleet, cfg *config.Config) *SeedingService {
	return &SeedingService{
		uowFactory:    uowFactory,
		fleet:         fleet,
		threshold:     cfg.SeedingThreshold,
		tick:          cfg.TickInterval,
		window:        cfg.SeedingWindow,
		rewardMessage: cfg.RewardMessage,
		allowMessages: cfg.AllowPlayerMessages,
		now:           time.Now,
		openSessions:  make(map[string]map[string]time.Time),
	}
}

// Start schedules the accrual tick. Singleton mode with rescheduling
// guarantees a slow tick is never overlapped by the next one.
func (s *SeedingService) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.tick),
		gocron.NewTask(func() { s.RunTick(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	s.scheduler = scheduler
	scheduler.Start()

	log.WithFields(log.Fields{
		"tick":      s.tick,
		"threshold": s.threshold,
		"endpoints": len(s.fleet.URLs()),
	}).Info("Seeding accrual started")
	return nil
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (s *SeedingService) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// RunTick performs one accrual pass over every endpoint's roster. It
// does not return until all reward notifications dispatched by this
// tick have been delivered or failed.
func (s *SeedingService) RunTick(ctx context.Context) {
	now := s.now()

	if !s.window.Contains(now) {
		// Sessions end when the window closes.
		for server := range s.openSessions {
			delete(s.openSessions, server)
		}
		log.Debug("Outside seeding window, skipping tick")
		return
	}

	rosters := s.fleet.Rosters(ctx)

	// A player can only be credited once per tick, no matter how many
	// rosters claim them.
	var creditedMu sync.Mutex
	credited := make(map[string]bool)
	claim := func(playerID string) bool {
		creditedMu.Lock()
		defer creditedMu.Unlock()
		if credited[playerID] {
			return false
		}
		credited[playerID] = true
		return true
	}

	// All submap writes happen before the workers start; each worker
	// then only touches its own server's submap.
	healthy := make(map[string][]rcon.Player)
	for server, outcome := range rosters {
		if outcome.Err != nil {
			// Open sessions on an unreachable server are left as they
			// are; the next successful tick resolves them.
			log.WithField("endpoint", server).Errorf("Failed to fetch roster: %v", outcome.Err)
			continue
		}
		if s.openSessions[server] == nil {
			s.openSessions[server] = make(map[string]time.Time)
		}
		healthy[server] = outcome.Value
	}

	var wg sync.WaitGroup
	for server, roster := range healthy {
		wg.Add(1)
		go func(server string, roster []rcon.Player) {
			defer wg.Done()
			s.processServer(ctx, server, roster, now, claim)
		}(server, roster)
	}
	wg.Wait()
	s.notifyWG.Wait()
}

// processServer credits one server's roster for this tick. Each server
// owns its openSessions submap, so no locking is needed here.
func (s *SeedingService) processServer(ctx context.Context, server string, roster []rcon.Player, now time.Time, claim func(string) bool) {
	open := s.openSessions[server]

	// Rosters occasionally repeat a player mid-reconnect.
	players := make(map[string]rcon.Player, len(roster))
	for _, p := range roster {
		if p.PlayerID == "" {
			continue
		}
		if _, ok := players[p.PlayerID]; !ok {
			players[p.PlayerID] = p
		}
	}

	if len(players) == 0 || len(players) >= s.threshold {
		// Populated or empty servers do not need seeding; any open
		// sessions there lapse at their last recorded end time.
		for id := range open {
			delete(open, id)
		}
		return
	}

	credited := 0
	for id, p := range players {
		if !claim(id) {
			continue
		}

		start, inSession := open[id]
		if !inSession {
			start = now
		}

		player, err := s.accrue(ctx, p, server, start, now)
		if err != nil {
			log.WithFields(log.Fields{
				"endpoint": server,
				"playerID": id,
			}).Errorf("Failed to credit seeding time: %v", err)
			delete(open, id)
			continue
		}
		open[id] = start
		credited++

		// Announce each whole hour as it is banked.
		before := player.SeedingBalance - s.tick
		if player.SeedingBalance/time.Hour > before/time.Hour {
			s.notifyReward(server, id, player.BankedHours())
		}
	}

	// Sessions of players who left lapse.
	for id := range open {
		if _, present := players[id]; !present {
			delete(open, id)
		}
	}

	if credited > 0 {
		log.WithFields(log.Fields{
			"endpoint": server,
			"players":  credited,
		}).Info("Credited seeding tick")
	}
}

// accrue applies one player's tick credit and session extension in a
// single short transaction, so one player's failure cannot roll back
// another's credit.
func (s *SeedingService) accrue(ctx context.Context, p rcon.Player, server string, start, now time.Time) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().ApplyAccrual(ctx, p.PlayerID, p.Name, s.tick, now)
	if err != nil {
		return nil, err
	}
	if err := uow.SeedingSessionRepository().Upsert(ctx, p.PlayerID, server, start, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return player, nil
}

// notifyReward sends the in-game reward message without blocking the
// tick's credit loop. RunTick waits for deliveries before returning.
func (s *SeedingService) notifyReward(server, playerID string, hours int64) {
	if !s.allowMessages {
		return
	}
	message := strings.ReplaceAll(s.rewardMessage, "{hours}", strconv.FormatInt(hours, 10))

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.fleet.MessagePlayer(ctx, server, playerID, message); err != nil {
			log.WithFields(log.Fields{
				"endpoint": server,
				"playerID": playerID,
			}).Warnf("Failed to deliver reward message: %v", err)
		}
	}()
}
