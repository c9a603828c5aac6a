package config

import "github.com/matchcaller/matchcaller/internal/domain"

// defaultTimers is the catalog a fresh destination starts with: a generic
// MOBA session from first spawn to the expected endgame push. Times are game
// seconds.
func defaultTimers() map[string]domain.TimerEvent {
	return map[string]domain.TimerEvent{
		"match_start": {
			TriggerSecond: 0,
			Messages:      []string{"Match is live. Good luck out there"},
			Category:      domain.CategoryEarlyGame,
		},
		"first_wards": {
			TriggerSecond: 120,
			Messages: []string{
				"Get wards down for vision",
				"Vision check. Place your wards",
			},
			Category: domain.CategoryReminder,
		},
		"jungle_buffs_soon": {
			TriggerSecond: 150,
			Messages:      []string{"30 seconds until the first jungle buffs"},
			Category:      domain.CategoryBuff,
		},
		"river_buffs": {
			TriggerSecond: 180,
			Messages:      []string{"River buffs are spawning now"},
			Category:      domain.CategoryObjective,
		},
		"first_objective": {
			TriggerSecond: 300,
			Messages:      []string{"First major objective is up"},
			Category:      domain.CategoryObjective,
		},
		"river_respawn": {
			TriggerSecond: 320,
			Messages:      []string{"River buffs respawning soon"},
			Category:      domain.CategoryBuff,
		},
		"ward_upgrade": {
			TriggerSecond: 400,
			Messages:      []string{"Support, upgrade your wards"},
			Category:      domain.CategoryReminder,
		},
		"mid_objective": {
			TriggerSecond: 420,
			Messages:      []string{"Mid objective available, start setting up"},
			Category:      domain.CategoryObjective,
		},
		"jungle_level_check": {
			TriggerSecond: 480,
			Messages:      []string{"Jungler should be close to their power spike"},
			Category:      domain.CategoryFarm,
		},
		"tower_pressure": {
			TriggerSecond: 600,
			Messages: []string{
				"Push for tower damage",
				"Carry, keep your farm up while you pressure",
			},
			Category: domain.CategoryObjective,
		},
		"second_objective": {
			TriggerSecond: 630,
			Messages:      []string{"Second objective spawning, stack your buffs"},
			Category:      domain.CategoryObjective,
		},
		"solo_spike": {
			TriggerSecond: 720,
			Messages:      []string{"Solo lanes hitting their level spike"},
			Category:      domain.CategoryMidGame,
		},
		"rotate_check": {
			TriggerSecond: 840,
			Messages:      []string{"Check outer towers and rotate if needed"},
			Category:      domain.CategoryObjective,
		},
		"halfway_vision": {
			TriggerSecond: 900,
			Messages:      []string{"Halfway mark. Keep map control"},
			Category:      domain.CategoryReminder,
		},
		"wave_setup": {
			TriggerSecond: 1020,
			Messages:      []string{"Push waves before you commit to objectives"},
			Category:      domain.CategoryFarm,
		},
		"major_objective_soon": {
			TriggerSecond: 1140,
			Messages:      []string{"Big objective coming up. Win the vision fight first"},
			Category:      domain.CategoryObjective,
		},
		"empowered_buffs": {
			TriggerSecond: 1260,
			Messages:      []string{"River buffs are empowered from here on"},
			Category:      domain.CategoryLateGame,
		},
		"late_game": {
			TriggerSecond: 1500,
			Messages:      []string{"Late game now. Focus inhibitors, no solo deaths"},
			Category:      domain.CategoryLateGame,
		},
		"closing_time": {
			TriggerSecond: 2100,
			Messages:      []string{"Critical phase. Play it slow and keep vision"},
			Category:      domain.CategoryLateGame,
		},
		"final_push": {
			TriggerSecond: 2400,
			Messages:      []string{"Secure the next objective and end it"},
			Category:      domain.CategoryLateGame,
		},
	}
}

// DefaultDestination builds the configuration a brand-new destination gets.
func DefaultDestination() *Destination {
	return &Destination{
		Settings: domain.DefaultSettings(),
		Timers:   defaultTimers(),
	}
}
