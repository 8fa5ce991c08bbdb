package reporting

import (
	"fmt"
	"math"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// StaffingFactor sizes the staffing recommendation from the peak
// concurrent device count.
const StaffingFactor = 1.2

// RecommendationEngine generates actionable venue recommendations from a
// built report.
type RecommendationEngine struct{}

// NewRecommendationEngine creates a new recommendation engine instance.
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// Generate creates prioritized recommendations based on the report
// metrics. The report must already carry its derived statistics.
func (re *RecommendationEngine) Generate(report domain.SessionReport) []domain.Recommendation {
	var recommendations []domain.Recommendation

	if rec := re.engagementRecommendation(report.ConnectionRate, report.Engagement); rec != nil {
		recommendations = append(recommendations, *rec)
	}
	if rec := re.dwellRecommendation(report.AvgDwellSeconds); rec != nil {
		recommendations = append(recommendations, *rec)
	}
	if rec := re.staffingRecommendation(report.PeakConcurrent, report.PeakHour); rec != nil {
		recommendations = append(recommendations, *rec)
	}

	return recommendations
}

func (re *RecommendationEngine) engagementRecommendation(rate float64, tier domain.EngagementTier) *domain.Recommendation {
	switch tier {
	case domain.EngagementHigh:
		return &domain.Recommendation{
			Priority:    "low",
			Title:       "Keep the Current Engagement Strategy",
			Description: fmt.Sprintf("Connection rate is %.1f%%. Visitors are actively joining the network.", rate),
			Actions: []string{
				"Keep the captive portal content fresh",
				"Track week-over-week rate for regressions",
			},
		}
	case domain.EngagementModerate:
		return &domain.Recommendation{
			Priority:    "medium",
			Title:       "Improve WiFi Signage and Onboarding",
			Description: fmt.Sprintf("Connection rate is %.1f%%. Many nearby visitors never connect.", rate),
			Actions: []string{
				"Display the network name and password at entrances",
				"Simplify the captive portal to a single step",
				"Offer a small incentive for connecting",
			},
		}
	default:
		return &domain.Recommendation{
			Priority:    "high",
			Title:       "Investigate the Low Connection Rate",
			Description: fmt.Sprintf("Connection rate is %.1f%%. Visitors see the network but do not join.", rate),
			Actions: []string{
				"Verify the access point placement and coverage",
				"Check for captive portal failures on common devices",
				"Review the network name for discoverability",
				"Survey visitors on why they avoid the WiFi",
			},
		}
	}
}

func (re *RecommendationEngine) dwellRecommendation(avgDwell float64) *domain.Recommendation {
	if avgDwell >= domain.GoodDwellSeconds {
		return &domain.Recommendation{
			Priority:    "low",
			Title:       "Monetize Long Visits",
			Description: fmt.Sprintf("Average dwell is %.0f seconds. Visitors stay well past the 5-minute mark.", avgDwell),
			Actions: []string{
				"Promote loyalty signups on the portal landing page",
				"Schedule promotions during the longest-dwell hours",
			},
		}
	}
	return &domain.Recommendation{
		Priority:    "medium",
		Title:       "Increase Visitor Dwell Time",
		Description: fmt.Sprintf("Average dwell is %.0f seconds, under the 5-minute engagement mark.", avgDwell),
		Actions: []string{
			"Add seating or waiting areas near coverage",
			"Surface in-store offers on the portal landing page",
			"Check whether short dwell matches a pass-through location",
		},
	}
}

func (re *RecommendationEngine) staffingRecommendation(peakConcurrent int, peakHour string) *domain.Recommendation {
	if peakConcurrent <= 0 {
		return nil
	}
	suggested := int(math.Ceil(float64(peakConcurrent) * StaffingFactor))
	return &domain.Recommendation{
		Priority:    "medium",
		Title:       "Staff for Peak Traffic",
		Description: fmt.Sprintf("Peak concurrency was %d devices. Plan capacity for about %d visitors.", peakConcurrent, suggested),
		Actions: []string{
			fmt.Sprintf("Schedule extra staff around %s", peakHour),
			"Compare the peak hour against the till and door counters",
		},
	}
}
