package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/roster-resolver-go/pkg/models"
	"github.com/arnavshah/roster-resolver-go/pkg/resolver"
	"github.com/gin-gonic/gin"
)

func csvColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	return cols
}

// ResolveCSV accepts members/seats/availability CSV uploads, resolves the
// assembled snapshot, and returns the decisions as CSV.
func (h *Handler) ResolveCSV(c *gin.Context) {
	membersFile, _ := c.FormFile("members_file")
	seatsFile, _ := c.FormFile("seats_file")
	availabilityFile, _ := c.FormFile("availability_file")

	if membersFile == nil || seatsFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "members_file and seats_file are required"})
		return
	}

	members, err := parseMembersCSV(membersFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seats, err := parseSeatsCSV(seatsFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var availability []models.Availability
	if availabilityFile != nil {
		availability, err = parseAvailabilityCSV(availabilityFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	snap := models.Snapshot{
		Members:      members,
		Seats:        seats,
		Availability: availability,
	}
	h.attachScoring(&snap)

	report := resolver.Resolve(&snap)
	h.RecordUsage(c, len(snap.Seats), len(snap.Members))

	// Export CSV
	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)
	writer.Write([]string{"shift_id", "seat_id", "member_id", "score", "locked", "reason"})

	for _, d := range report.Assignments {
		score := ""
		if d.Score != nil {
			score = fmt.Sprintf("%.2f", *d.Score)
		}
		writer.Write([]string{d.ShiftID, d.SeatID, d.MemberID, score, strconv.FormatBool(d.Locked), ""})
	}
	for _, u := range report.Unfilled {
		writer.Write([]string{u.ShiftID, u.SeatID, "", "", "false", u.Reason})
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{
		"csv":     outCSV.String(),
		"summary": report.Summary,
	})
}

func parseMembersCSV(fh *multipart.FileHeader) ([]models.Member, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open members file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read members header")
	}
	cols := csvColumns(header)

	var members []models.Member
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		m := models.Member{ID: record[cols["id"]]}
		if i, ok := cols["qualifications"]; ok && record[i] != "" {
			m.Qualifications = strings.Split(record[i], "|")
		}
		if i, ok := cols["hours"]; ok {
			m.Hours, _ = strconv.ParseFloat(record[i], 64)
		}
		if i, ok := cols["max_hours"]; ok && record[i] != "" {
			maxHours, err := strconv.ParseFloat(record[i], 64)
			if err == nil {
				m.MaxHours = &maxHours
			}
		}
		if i, ok := cols["hourly_rate"]; ok && record[i] != "" {
			m.HourlyRate, _ = strconv.ParseFloat(record[i], 64)
		}
		members = append(members, m)
	}
	return members, nil
}

func parseSeatsCSV(fh *multipart.FileHeader) ([]models.Seat, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open seats file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read seats header")
	}
	cols := csvColumns(header)

	var seats []models.Seat
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		s := models.Seat{
			ShiftID: record[cols["shift_id"]],
			SeatID:  record[cols["seat_id"]],
		}
		if i, ok := cols["required_quals"]; ok && record[i] != "" {
			s.RequiredQuals = strings.Split(record[i], "|")
		}
		if i, ok := cols["duration_hours"]; ok && record[i] != "" {
			s.DurationHours, _ = strconv.ParseFloat(record[i], 64)
		}
		seats = append(seats, s)
	}
	return seats, nil
}

func parseAvailabilityCSV(fh *multipart.FileHeader) ([]models.Availability, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open availability file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read availability header")
	}
	cols := csvColumns(header)

	var records []models.Availability
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		kind := models.AvailabilityFull
		if i, ok := cols["kind"]; ok && record[i] != "" {
			kind = record[i]
		}
		records = append(records, models.Availability{
			MemberID: record[cols["member_id"]],
			ShiftID:  record[cols["shift_id"]],
			Kind:     kind,
		})
	}
	return records, nil
}
