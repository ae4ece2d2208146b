package resolver

import (
	"errors"
	"math"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
)

var (
	// ErrSeatNotFound is returned by ad-hoc seat queries for unknown seats.
	ErrSeatNotFound = errors.New("seat not found")
	// ErrMissingScoringConfig is returned when a query needs weights and
	// the snapshot carries none.
	ErrMissingScoringConfig = errors.New("missing scoring config")
)

// EvaluateSeatByKey is the read-only candidate preview used by supervisor
// tooling: who could fill this seat, independent of committing a run.
func EvaluateSeatByKey(snap *models.Snapshot, shiftID, seatID string) (SeatEvaluation, error) {
	if snap.Scoring == nil {
		return SeatEvaluation{}, ErrMissingScoringConfig
	}
	for _, seat := range snap.Seats {
		if seat.ShiftID == shiftID && seat.SeatID == seatID {
			return EvaluateSeat(snap, seat), nil
		}
	}
	return SeatEvaluation{}, ErrSeatNotFound
}

// summarize rolls up counts, the fairness metric and the cost estimate.
func summarize(snap *models.Snapshot, report models.RunReport) models.RunSummary {
	sum := models.RunSummary{
		FilledRequired:   len(report.Assignments),
		UnfilledRequired: len(report.Unfilled),
	}

	rates := make(map[string]float64, len(snap.Members))
	hours := make(map[string]float64, len(snap.Members))
	for _, m := range snap.Members {
		rates[m.ID] = m.HourlyRate
		hours[m.ID] = m.Hours
	}

	durations := make(map[string]float64, len(snap.Seats))
	for _, s := range snap.Seats {
		durations[s.Key()] = s.Duration()
	}

	cost := 0.0
	for _, d := range report.Assignments {
		dur := durations[models.SeatKey(d.ShiftID, d.SeatID)]
		hours[d.MemberID] += dur
		cost += dur * rates[d.MemberID]
	}
	sum.EstimatedCost = round2(cost)
	sum.FairnessScore = fairnessScore(hours)
	return sum
}

// fairnessScore converts the post-run hour distribution into a 0-100
// percentage; 100 means zero standard deviation.
func fairnessScore(hoursByMember map[string]float64) float64 {
	if len(hoursByMember) == 0 {
		return 100.0
	}

	var sum float64
	for _, h := range hoursByMember {
		sum += h
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(hoursByMember))
	var varianceSum float64
	for _, h := range hoursByMember {
		diff := h - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(hoursByMember)))

	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0.0
	}
	return round2(score)
}

// Fragility statuses
const (
	StatusGreen  = "green"
	StatusYellow = "yellow"
	StatusRed    = "red"
)

// FragilityRow grades one seat by the depth of its eligible pool.
type FragilityRow struct {
	ShiftID       string   `json:"shift_id"`
	SeatID        string   `json:"seat_id"`
	EligibleCount int      `json:"eligible_count"`
	Status        string   `json:"status"`
	Reasons       []string `json:"reasons,omitempty"`
}

// Fragility reports how close each seat is to being unfillable if the
// roster were locked right now: red means no candidates at all, yellow a
// pool of one.
func Fragility(snap *models.Snapshot) ([]FragilityRow, error) {
	if snap.Scoring == nil {
		return nil, ErrMissingScoringConfig
	}

	rows := make([]FragilityRow, 0, len(snap.Seats))
	for _, seat := range snap.Seats {
		eval := EvaluateSeat(snap, seat)
		row := FragilityRow{
			ShiftID:       seat.ShiftID,
			SeatID:        seat.SeatID,
			EligibleCount: eval.EligibleCount(),
		}
		switch {
		case row.EligibleCount == 0:
			row.Status = StatusRed
			row.Reasons = append(row.Reasons, "no eligible candidates")
		case row.EligibleCount == 1:
			row.Status = StatusYellow
			row.Reasons = append(row.Reasons, "only one candidate in the pool")
		default:
			row.Status = StatusGreen
		}
		rows = append(rows, row)
	}
	return rows, nil
}
