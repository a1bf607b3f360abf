package ledger

import "github.com/shenikar/flood_dispatch_system/internal/models"

// Seed возвращает начальное состояние, с которым стартует процесс
func Seed() models.Snapshot {
	return models.Snapshot{
		Incidents: []models.Incident{
			{
				ID:          "INC-2024-001",
				Location:    "Minto Bridge",
				Category:    "Water Logging",
				ReportedAt:  "10 mins ago",
				Status:      models.StatusNew,
				Severe:      true,
				Description: "Severe water logging reported under bridge.",
			},
			{
				ID:          "INC-2024-002",
				Location:    "Lajpat Nagar",
				Category:    "Drain Blockage",
				ReportedAt:  "25 mins ago",
				Status:      models.StatusAssigned,
				Description: "Main drain blocked near market.",
			},
			{
				ID:          "INC-2024-003",
				Location:    "Connaught Place",
				Category:    "Water Logging",
				ReportedAt:  "1 hour ago",
				Status:      models.StatusResolved,
				Description: "Minor water accumulation cleared.",
			},
		},
		Dispatches: []models.Dispatch{},
		Resources: models.Resources{
			HeavyPumps:     models.ResourcePool{Available: 5, Total: 5},
			SuctionTankers: models.ResourcePool{Available: 8, Total: 8},
			ResponseTeams:  models.ResourcePool{Available: 12, Total: 12},
		},
	}
}
